package status

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/permissao"
)

type stubRepo struct {
	items      map[int64]*Status
	demandas   map[int64]int
	nextID     int64
	listCalls  int
	deleteCall int
}

func newStubRepo() *stubRepo {
	s := &stubRepo{items: map[int64]*Status{}, demandas: map[int64]int{}}
	for i, nome := range []string{"Caixa de Entrada", "Em Análise", "Em Andamento", "Concluído", "Arquivado"} {
		s.nextID++
		s.items[s.nextID] = &Status{ID: s.nextID, Nome: nome, Ordem: i + 1, Cor: CorPadrao, Ativo: true}
	}
	return s
}

func (s *stubRepo) ListAtivos(ctx context.Context) ([]Status, error) {
	s.listCalls++
	out := []Status{}
	for _, st := range s.items {
		if st.Ativo {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordem < out[j].Ordem })
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id int64) (*Status, error) {
	st, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *stubRepo) MaxOrdem(ctx context.Context) (int, error) {
	maior := 0
	for _, st := range s.items {
		if st.Ordem > maior {
			maior = st.Ordem
		}
	}
	return maior, nil
}

func (s *stubRepo) Create(ctx context.Context, nome string, ordem int, cor string) (*Status, error) {
	for _, st := range s.items {
		if st.Ordem == ordem {
			return nil, ErrOrdemDuplicada
		}
	}
	s.nextID++
	st := &Status{ID: s.nextID, Nome: nome, Ordem: ordem, Cor: cor, Ativo: true}
	s.items[st.ID] = st
	cp := *st
	return &cp, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, input UpdateInput) (*Status, error) {
	st, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	st.Nome = input.Nome
	if input.Ordem != nil {
		st.Ordem = *input.Ordem
	}
	if input.Cor != nil {
		st.Cor = *input.Cor
	}
	if input.Ativo != nil {
		st.Ativo = *input.Ativo
	}
	cp := *st
	return &cp, nil
}

func (s *stubRepo) CountDemandas(ctx context.Context, id int64) (int, error) {
	return s.demandas[id], nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	s.deleteCall++
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func setupCache(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

var (
	admin    = permissao.Ator{ID: uuid.New(), Nivel: permissao.Administrador}
	assessor = permissao.Ator{ID: uuid.New(), Nivel: permissao.AssessorInterno}
)

func intPtr(v int) *int { return &v }

func TestListAtivosUsesCache(t *testing.T) {
	client, mr := setupCache(t)
	repo := newStubRepo()
	svc := NewService(repo, client, time.Minute)
	ctx := context.Background()

	first, err := svc.ListAtivos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 5 || first[0].Ordem != 1 || first[4].Ordem != 5 {
		t.Fatalf("unexpected order %+v", first)
	}
	if _, err := svc.ListAtivos(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected cached second read, repo called %d times", repo.listCalls)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := svc.ListAtivos(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected cache expiry, repo called %d times", repo.listCalls)
	}
}

func TestMutationInvalidatesCache(t *testing.T) {
	client, mr := setupCache(t)
	repo := newStubRepo()
	svc := NewService(repo, client, time.Minute)
	ctx := context.Background()

	if _, err := svc.ListAtivos(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !mr.Exists(cacheKeyAtivos) {
		t.Fatal("expected cache populated")
	}

	created, err := svc.Create(ctx, admin, CreateInput{Nome: "Aguardando Retorno"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Ordem != 6 {
		t.Fatalf("expected ordem max+1 = 6, got %d", created.Ordem)
	}
	if mr.Exists(cacheKeyAtivos) {
		t.Fatal("expected cache invalidated")
	}

	items, _ := svc.ListAtivos(ctx)
	if len(items) != 6 {
		t.Fatalf("expected fresh list with 6 items, got %d", len(items))
	}
}

func TestListAtivosWithoutCache(t *testing.T) {
	svc := NewService(newStubRepo(), nil, time.Minute)
	items, err := svc.ListAtivos(context.Background())
	if err != nil || len(items) != 5 {
		t.Fatalf("unexpected %v %v", items, err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newStubRepo(), nil, time.Minute)
	ctx := context.Background()

	if _, err := svc.Create(ctx, assessor, CreateInput{Nome: "X"}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, admin, CreateInput{Nome: " "}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}
	if _, err := svc.Create(ctx, admin, CreateInput{Nome: "Duplicado", Ordem: intPtr(3)}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	cor := "azul"
	if _, err := svc.Create(ctx, admin, CreateInput{Nome: "Cor", Cor: &cor}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestUpdateSentinelOrder(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Update(ctx, admin, 1, UpdateInput{Nome: "Entrada", Ordem: intPtr(2)})
	if e := apperr.From(err); e.Kind != apperr.KindValidation || e.Tipo != TipoStatusProtegido {
		t.Fatalf("expected protected status error, got %v", err)
	}

	_, err = svc.Update(ctx, admin, 3, UpdateInput{Nome: "Andamento", Ordem: intPtr(5)})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation, got %v", err)
	}

	renamed, err := svc.Update(ctx, admin, 1, UpdateInput{Nome: "Entrada", Ordem: intPtr(1)})
	if err != nil {
		t.Fatalf("rename sentinel: %v", err)
	}
	if renamed.Nome != "Entrada" || renamed.Ordem != 1 {
		t.Fatalf("unexpected %+v", renamed)
	}

	if _, err := svc.Update(ctx, admin, 99, UpdateInput{Nome: "X"}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newStubRepo()
	repo.demandas[3] = 2
	svc := NewService(repo, nil, time.Minute)
	ctx := context.Background()

	for _, id := range []int64{1, 5} {
		for _, ator := range []permissao.Ator{admin, {ID: uuid.New(), Nivel: permissao.ChefeGabinete}, {ID: uuid.New(), Nivel: permissao.Supervisor}} {
			err := svc.Delete(ctx, ator, id)
			if e := apperr.From(err); e.Kind != apperr.KindValidation || e.Tipo != TipoStatusProtegido {
				t.Fatalf("sentinel %d deleted by %s: %v", id, ator.Nivel, err)
			}
		}
	}

	err := svc.Delete(ctx, admin, 3)
	if e := apperr.From(err); e.Kind != apperr.KindValidation || e.Tipo != TipoStatusEmUso {
		t.Fatalf("expected in-use error, got %v", err)
	}
	if repo.deleteCall != 0 {
		t.Fatal("guards must run before delete")
	}

	if err := svc.Delete(ctx, assessor, 2); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := svc.Delete(ctx, admin, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.items[2]; ok {
		t.Fatal("expected status removed")
	}

	if err := svc.Delete(ctx, admin, 2); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
