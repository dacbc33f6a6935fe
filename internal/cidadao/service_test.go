package cidadao

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/util"
)

type stubRepo struct {
	cidadaos []Cidadao
}

func (s *stubRepo) Create(ctx context.Context, input CreateInput, nascimento time.Time) (*Cidadao, error) {
	c := Cidadao{
		ID:             uuid.New(),
		NomeCompleto:   input.NomeCompleto,
		Telefone:       input.Telefone,
		DataNascimento: nascimento.Format(dateLayout),
		Bairro:         input.Bairro,
		Cidade:         input.Cidade,
		Estado:         input.Estado,
		Email:          input.Email,
		CriadoEm:       time.Now(),
	}
	s.cidadaos = append(s.cidadaos, c)
	return &c, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Cidadao, error) {
	for i := range s.cidadaos {
		if s.cidadaos[i].ID == id {
			return &s.cidadaos[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) FindByTelefone(ctx context.Context, digits string) (*Cidadao, error) {
	for i := range s.cidadaos {
		if strings.Contains(util.OnlyDigits(s.cidadaos[i].Telefone), digits) {
			return &s.cidadaos[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) List(ctx context.Context) ([]Cidadao, error) {
	return s.cidadaos, nil
}

func validInput() CreateInput {
	return CreateInput{
		NomeCompleto:   "Maria da Silva Santos",
		Telefone:       "(62) 99999-8888",
		DataNascimento: "1980-05-17",
		Bairro:         "Centro",
		Cidade:         "Goiânia",
		Estado:         "go",
	}
}

func TestCreateNormalizesPhone(t *testing.T) {
	svc := NewService(&stubRepo{})
	c, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Telefone != "62999998888" {
		t.Fatalf("expected digits-only phone, got %q", c.Telefone)
	}
	if c.Estado != "GO" {
		t.Fatalf("expected upper-case state, got %q", c.Estado)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&stubRepo{})
	ctx := context.Background()

	missing := validInput()
	missing.Bairro = " "
	if _, err := svc.Create(ctx, missing); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	badDate := validInput()
	badDate.DataNascimento = "17/05/1980"
	if _, err := svc.Create(ctx, badDate); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	badEmail := validInput()
	email := "nao-e-email"
	badEmail.Email = &email
	if _, err := svc.Create(ctx, badEmail); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindByTelefone(t *testing.T) {
	repo := &stubRepo{cidadaos: []Cidadao{{ID: uuid.New(), NomeCompleto: "Maria", Telefone: "(62) 99999-8888"}}}
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.FindByTelefone(ctx, "62999998888")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if c.NomeCompleto != "Maria" {
		t.Fatalf("unexpected cidadao %+v", c)
	}

	if _, err := svc.FindByTelefone(ctx, "99999-8888"); err != nil {
		t.Fatalf("partial match failed: %v", err)
	}

	if _, err := svc.FindByTelefone(ctx, "11 4444-0000"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindOrCreate(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	first, created, err := svc.FindOrCreate(ctx, validInput())
	if err != nil || !created {
		t.Fatalf("expected creation, got %v %v", created, err)
	}
	again, created, err := svc.FindOrCreate(ctx, validInput())
	if err != nil || created {
		t.Fatalf("expected reuse, got %v %v", created, err)
	}
	if again.ID != first.ID || len(repo.cidadaos) != 1 {
		t.Fatal("expected same citizen reused")
	}
}
