package demanda

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/db"
	"github.com/gestaozabele/gabinete/internal/permissao"
	"github.com/gestaozabele/gabinete/internal/status"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN não definido")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestRepositoryTransitionHistory(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u, err := usuario.NewRepository(pool).Create(ctx, usuario.CreateParams{
		NomeCompleto:   "Supervisor Teste",
		Email:          uuid.NewString() + "@teste.gov.br",
		SenhaHash:      "x",
		NivelPermissao: permissao.Supervisor,
	})
	if err != nil {
		t.Fatalf("usuario: %v", err)
	}
	telefone := fmt.Sprintf("629%08d", time.Now().UnixNano()%100000000)
	c, err := cidadao.NewRepository(pool).Create(ctx, cidadao.CreateInput{
		NomeCompleto: "Joana Teste",
		Telefone:     telefone,
		Bairro:       "Centro",
		Cidade:       "Goiânia",
		Estado:       "GO",
	}, time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("cidadao: %v", err)
	}

	repo := NewRepository(pool)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM demandas WHERE cidadao_id = $1`, c.ID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM cidadaos WHERE id = $1`, c.ID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM usuarios WHERE id = $1`, u.ID)
	})

	etapas, err := status.NewRepository(pool).ListAtivos(ctx)
	if err != nil || len(etapas) == 0 {
		t.Fatalf("status: %v (%d)", err, len(etapas))
	}

	titulo := "Poda de árvore " + uuid.NewString()
	d, err := repo.Create(ctx, CreateParams{
		Titulo:               titulo,
		Prioridade:           PrioridadeMedia,
		CidadaoID:            c.ID,
		UsuarioResponsavelID: u.ID,
		UsuarioOrigemID:      u.ID,
		StatusID:             etapas[0].ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, st := range etapas[1:] {
		moved, err := repo.Transition(ctx, d.ID, st.ID, u.ID)
		if err != nil {
			t.Fatalf("transition to %s: %v", st.Nome, err)
		}
		if moved.StatusID != st.ID {
			t.Fatalf("expected status %d got %d", st.ID, moved.StatusID)
		}
	}

	hist, err := repo.Historico(ctx, d.ID)
	if err != nil {
		t.Fatalf("historico: %v", err)
	}
	if len(hist) != len(etapas) {
		t.Fatalf("expected %d entries got %d", len(etapas), len(hist))
	}
	for i, h := range hist {
		if h.StatusNome != etapas[i].Nome {
			t.Fatalf("entry %d: expected %q got %q", i, etapas[i].Nome, h.StatusNome)
		}
	}

	if _, err := repo.Transition(ctx, d.ID, -1, u.ID); !errors.Is(err, ErrStatusInvalido) {
		t.Fatalf("expected ErrStatusInvalido, got %v", err)
	}
	if _, err := repo.Transition(ctx, uuid.New(), etapas[0].ID, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	found, err := repo.List(ctx, Filter{Busca: titulo[:20], ResponsavelID: &u.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(found) != 1 || found[0].ID != d.ID {
		t.Fatalf("expected the created demand, got %d rows", len(found))
	}

	if err := repo.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
