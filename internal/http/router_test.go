package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/auth"
	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/comentario"
	"github.com/gestaozabele/gabinete/internal/compartilhamento"
	"github.com/gestaozabele/gabinete/internal/config"
	"github.com/gestaozabele/gabinete/internal/demanda"
	"github.com/gestaozabele/gabinete/internal/permissao"
	"github.com/gestaozabele/gabinete/internal/status"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type usuarioRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*usuario.Usuario
}

func (s *usuarioRepo) GetByEmail(ctx context.Context, email string) (*usuario.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, usuario.ErrNotFound
}
func (s *usuarioRepo) GetByID(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, usuario.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
func (s *usuarioRepo) List(ctx context.Context, somenteAtivos bool) ([]usuario.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []usuario.Usuario
	for _, u := range s.items {
		if !somenteAtivos || u.Ativo {
			out = append(out, *u)
		}
	}
	return out, nil
}
func (s *usuarioRepo) Create(ctx context.Context, p usuario.CreateParams) (*usuario.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &usuario.Usuario{ID: uuid.New(), NomeCompleto: p.NomeCompleto, Email: p.Email, SenhaHash: p.SenhaHash, NivelPermissao: p.NivelPermissao, Ativo: true}
	s.items[u.ID] = u
	cp := *u
	return &cp, nil
}
func (s *usuarioRepo) Update(ctx context.Context, id uuid.UUID, in usuario.UpdateInput) (*usuario.Usuario, error) {
	return s.GetByID(ctx, id)
}
func (s *usuarioRepo) SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*usuario.Usuario, error) {
	s.mu.Lock()
	if u, ok := s.items[id]; ok {
		u.Ativo = ativo
	}
	s.mu.Unlock()
	return s.GetByID(ctx, id)
}
func (s *usuarioRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string, temporaria bool) error {
	return nil
}
func (s *usuarioRepo) RecordLogin(ctx context.Context, id uuid.UUID) (time.Time, error) {
	return time.Now(), nil
}

type statusRepo struct{ items []status.Status }

func (s *statusRepo) ListAtivos(ctx context.Context) ([]status.Status, error) { return s.items, nil }
func (s *statusRepo) GetByID(ctx context.Context, id int64) (*status.Status, error) {
	for _, st := range s.items {
		if st.ID == id {
			cp := st
			return &cp, nil
		}
	}
	return nil, status.ErrNotFound
}
func (s *statusRepo) MaxOrdem(ctx context.Context) (int, error) { return len(s.items), nil }
func (s *statusRepo) Create(ctx context.Context, nome string, ordem int, cor string) (*status.Status, error) {
	st := status.Status{ID: int64(len(s.items) + 1), Nome: nome, Ordem: ordem, Cor: cor, Ativo: true}
	s.items = append(s.items, st)
	return &st, nil
}
func (s *statusRepo) Update(ctx context.Context, id int64, in status.UpdateInput) (*status.Status, error) {
	return s.GetByID(ctx, id)
}
func (s *statusRepo) CountDemandas(ctx context.Context, id int64) (int, error) { return 0, nil }
func (s *statusRepo) Delete(ctx context.Context, id int64) error { return nil }

type demandaRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*demanda.Demanda
	historico map[uuid.UUID][]demanda.HistoricoItem
}

func (s *demandaRepo) Create(ctx context.Context, p demanda.CreateParams) (*demanda.Demanda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &demanda.Demanda{
		ID:                   uuid.New(),
		Titulo:               p.Titulo,
		Descricao:            p.Descricao,
		Prioridade:           p.Prioridade,
		CidadaoID:            p.CidadaoID,
		UsuarioResponsavelID: p.UsuarioResponsavelID,
		UsuarioOrigemID:      p.UsuarioOrigemID,
		StatusID:             p.StatusID,
		CriadoEm:             time.Now(),
	}
	s.items[d.ID] = d
	s.historico[d.ID] = append(s.historico[d.ID], demanda.HistoricoItem{StatusID: &p.StatusID, AlteradoEm: d.CriadoEm})
	cp := *d
	return &cp, nil
}
func (s *demandaRepo) Get(ctx context.Context, id uuid.UUID) (*demanda.Demanda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.items[id]
	if !ok {
		return nil, demanda.ErrNotFound
	}
	cp := *d
	return &cp, nil
}
func (s *demandaRepo) List(ctx context.Context, f demanda.Filter) ([]demanda.Demanda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []demanda.Demanda{}
	for _, d := range s.items {
		out = append(out, *d)
	}
	return out, nil
}
func (s *demandaRepo) Transition(ctx context.Context, id uuid.UUID, statusID int64, ator uuid.UUID) (*demanda.Demanda, error) {
	s.mu.Lock()
	d, ok := s.items[id]
	if ok {
		d.StatusID = statusID
		s.historico[id] = append(s.historico[id], demanda.HistoricoItem{StatusID: &statusID, AlteradoPor: &ator, AlteradoEm: time.Now()})
	}
	s.mu.Unlock()
	if !ok {
		return nil, demanda.ErrNotFound
	}
	return s.Get(ctx, id)
}
func (s *demandaRepo) Update(ctx context.Context, id uuid.UUID, p demanda.UpdateParams, ator uuid.UUID) (*demanda.Demanda, error) {
	return s.Get(ctx, id)
}
func (s *demandaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return demanda.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
func (s *demandaRepo) Historico(ctx context.Context, id uuid.UUID) ([]demanda.HistoricoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historico[id], nil
}
func (s *demandaRepo) Estatisticas(ctx context.Context, usuarioID uuid.UUID) (*demanda.Estatisticas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &demanda.Estatisticas{Total: len(s.items), PorStatus: map[string]int{}, PorPrioridade: map[string]int{}}, nil
}

type cidadaoRepo struct{ items []cidadao.Cidadao }

func (s *cidadaoRepo) Create(ctx context.Context, in cidadao.CreateInput, nascimento time.Time) (*cidadao.Cidadao, error) {
	c := cidadao.Cidadao{ID: uuid.New(), NomeCompleto: in.NomeCompleto, Telefone: in.Telefone}
	s.items = append(s.items, c)
	return &c, nil
}
func (s *cidadaoRepo) GetByID(ctx context.Context, id uuid.UUID) (*cidadao.Cidadao, error) {
	for _, c := range s.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, cidadao.ErrNotFound
}
func (s *cidadaoRepo) FindByTelefone(ctx context.Context, digits string) (*cidadao.Cidadao, error) {
	for _, c := range s.items {
		if c.Telefone == digits {
			return &c, nil
		}
	}
	return nil, cidadao.ErrNotFound
}
func (s *cidadaoRepo) List(ctx context.Context) ([]cidadao.Cidadao, error) { return s.items, nil }

type comentarioRepo struct{}

func (comentarioRepo) Create(ctx context.Context, demandaID, usuarioID uuid.UUID, texto string, publico bool) (*comentario.Comentario, error) {
	return &comentario.Comentario{ID: uuid.New(), DemandaID: demandaID, UsuarioID: usuarioID, Comentario: texto, Publico: publico, CriadoEm: time.Now()}, nil
}
func (comentarioRepo) GetByID(ctx context.Context, id uuid.UUID) (*comentario.Comentario, error) {
	return nil, comentario.ErrNotFound
}
func (comentarioRepo) ListByDemanda(ctx context.Context, demandaID uuid.UUID) ([]comentario.Comentario, error) {
	return []comentario.Comentario{}, nil
}
func (comentarioRepo) ListPublicos(ctx context.Context, demandaID uuid.UUID) ([]comentario.Publico, error) {
	return []comentario.Publico{{Comentario: "Equipe agendou visita", CriadoEm: time.Now()}}, nil
}
func (comentarioRepo) Delete(ctx context.Context, id uuid.UUID) error { return comentario.ErrNotFound }

// compartilhamentoRepo lê as demandas do repositório de demandas para manter um único estado.
type compartilhamentoRepo struct {
	demandas *demandaRepo
	tokens   map[string]uuid.UUID
}

func (s *compartilhamentoRepo) GetInfo(ctx context.Context, id uuid.UUID) (*compartilhamento.Info, error) {
	d, err := s.demandas.Get(ctx, id)
	if err != nil {
		return nil, compartilhamento.ErrNotFound
	}
	info := &compartilhamento.Info{DemandaID: d.ID, Titulo: d.Titulo, ResponsavelID: d.UsuarioResponsavelID}
	for tok, did := range s.tokens {
		if did == id {
			t := tok
			info.Token = &t
			info.Ativo = true
		}
	}
	return info, nil
}
func (s *compartilhamentoRepo) Ativar(ctx context.Context, id uuid.UUID, token string, ator uuid.UUID) (time.Time, error) {
	for tok, did := range s.tokens {
		if did == id {
			delete(s.tokens, tok)
		}
	}
	s.tokens[token] = id
	return time.Now(), nil
}
func (s *compartilhamentoRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	for tok, did := range s.tokens {
		if did == id {
			delete(s.tokens, tok)
		}
	}
	return nil
}
func (s *compartilhamentoRepo) FindAtivo(ctx context.Context, token string) (*compartilhamento.Registro, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, compartilhamento.ErrNotFound
	}
	d, err := s.demandas.Get(ctx, id)
	if err != nil {
		return nil, compartilhamento.ErrNotFound
	}
	nome := "Maria Aparecida da Silva"
	return &compartilhamento.Registro{DemandaID: d.ID, Titulo: d.Titulo, Descricao: d.Descricao, CriadoEm: d.CriadoEm, CidadaoNome: &nome}, nil
}

type fixture struct {
	router   http.Handler
	jwt      *auth.JWTManager
	admin    *usuario.Usuario
	externo  *usuario.Usuario
	cidadao  cidadao.Cidadao
	demandas *demandaRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hash, err := auth.Hash("Senha@Forte123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &usuario.Usuario{ID: uuid.New(), NomeCompleto: "Ana Gestora", Email: "ana@gabinete.gov.br", SenhaHash: hash, NivelPermissao: permissao.Administrador, Ativo: true}
	externo := &usuario.Usuario{ID: uuid.New(), NomeCompleto: "Caio Externo", Email: "caio@gabinete.gov.br", SenhaHash: hash, NivelPermissao: permissao.AssessorExterno, Ativo: true}
	usuarios := &usuarioRepo{items: map[uuid.UUID]*usuario.Usuario{admin.ID: admin, externo.ID: externo}}

	cid := cidadao.Cidadao{ID: uuid.New(), NomeCompleto: "Maria Aparecida da Silva", Telefone: "11987654321"}
	cidadaos := &cidadaoRepo{items: []cidadao.Cidadao{cid}}

	etapas := &statusRepo{items: []status.Status{
		{ID: 1, Nome: "Caixa de Entrada", Ordem: 1, Ativo: true},
		{ID: 2, Nome: "Em Análise", Ordem: 2, Ativo: true},
		{ID: 3, Nome: "Concluído", Ordem: 4, Ativo: true},
	}}
	demandas := &demandaRepo{items: map[uuid.UUID]*demanda.Demanda{}, historico: map[uuid.UUID][]demanda.HistoricoItem{}}

	jwtMgr := auth.NewJWTManager(testSecret, time.Hour)
	usuarioSvc := usuario.NewService(usuarios, jwtMgr, "Gabinete@2024")
	cidadaoSvc := cidadao.NewService(cidadaos)
	statusSvc := status.NewService(etapas, nil, time.Minute)
	comentarioSvc := comentario.NewService(comentarioRepo{})

	cfg := &config.Config{
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	router := NewRouter(cfg, Deps{
		Usuarios:    usuarioSvc,
		Cidadaos:    cidadaoSvc,
		Status:      statusSvc,
		Demandas:    demanda.NewService(demandas, cidadaoSvc, statusSvc, nil),
		Comentarios: comentarioSvc,
		Compartilhamento: compartilhamento.NewService(
			&compartilhamentoRepo{demandas: demandas, tokens: map[string]uuid.UUID{}},
			demandas, comentarioSvc, "https://gabinete.example.com/demanda-publica.html",
		),
	})

	return &fixture{router: router, jwt: jwtMgr, admin: admin, externo: externo, cidadao: cid, demandas: demandas}
}

func (f *fixture) do(t *testing.T, method, path string, body any, u *usuario.Usuario) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, requestBody(body))
	if u != nil {
		req = withAuth(t, req, f.jwt, u)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("resposta não é JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, out
}

func requestBody(body any) *bytes.Buffer {
	if body == nil {
		return bytes.NewBuffer(nil)
	}
	if raw, ok := body.(string); ok {
		return bytes.NewBufferString(raw)
	}
	b, _ := json.Marshal(body)
	return bytes.NewBuffer(b)
}

func withAuth(t *testing.T, req *http.Request, jwtMgr *auth.JWTManager, u *usuario.Usuario) *http.Request {
	t.Helper()
	token, _, err := jwtMgr.GenerateAccessToken(u.ID.String(), u.Email, string(u.NivelPermissao))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (f *fixture) criarDemanda(t *testing.T, responsavel uuid.UUID) uuid.UUID {
	t.Helper()
	rec, body := f.do(t, http.MethodPost, "/api/demandas", map[string]any{
		"titulo":                 "Buraco na Rua das Flores",
		"prioridade":             "alta",
		"cidadao_id":             f.cidadao.ID,
		"usuario_responsavel_id": responsavel,
	}, f.admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %v", rec.Code, body)
	}
	d := body["demanda"].(map[string]any)
	id, err := uuid.Parse(d["id"].(string))
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	return id
}

func TestRoutes(t *testing.T) {
	f := newFixture(t)
	demandaID := f.criarDemanda(t, f.admin.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		user   *usuario.Usuario
		status int
	}{
		{"health", http.MethodGet, "/health", nil, nil, http.StatusOK},
		{"sem token", http.MethodGet, "/api/demandas", nil, nil, http.StatusUnauthorized},
		{"listar demandas", http.MethodGet, "/api/demandas", nil, f.admin, http.StatusOK},
		{"filtro invalido", http.MethodGet, "/api/demandas?data_inicio=ontem", nil, f.admin, http.StatusBadRequest},
		{"kanban", http.MethodGet, "/api/demandas/kanban", nil, f.externo, http.StatusOK},
		{"estatisticas", http.MethodGet, "/api/demandas/estatisticas", nil, f.externo, http.StatusOK},
		{"detalhe", http.MethodGet, "/api/demandas/" + demandaID.String(), nil, f.externo, http.StatusOK},
		{"id invalido", http.MethodGet, "/api/demandas/abc", nil, f.admin, http.StatusBadRequest},
		{"inexistente", http.MethodGet, "/api/demandas/" + uuid.NewString(), nil, f.admin, http.StatusNotFound},
		{"json invalido", http.MethodPost, "/api/demandas", "{", f.admin, http.StatusBadRequest},
		{"sem titulo", http.MethodPost, "/api/demandas", map[string]any{"cidadao_id": f.cidadao.ID, "usuario_responsavel_id": f.admin.ID}, f.admin, http.StatusBadRequest},
		{"externo move demanda alheia", http.MethodPatch, "/api/demandas/" + demandaID.String() + "/status", map[string]any{"status_id": 2}, f.externo, http.StatusForbidden},
		{"sem status_id", http.MethodPatch, "/api/demandas/" + demandaID.String() + "/status", map[string]any{}, f.admin, http.StatusBadRequest},
		{"historico", http.MethodGet, "/api/demandas/" + demandaID.String() + "/historico", nil, f.admin, http.StatusOK},
		{"status", http.MethodGet, "/api/status", nil, f.externo, http.StatusOK},
		{"externo cria status", http.MethodPost, "/api/status", map[string]any{"nome": "Aguardando"}, f.externo, http.StatusForbidden},
		{"admin cria status", http.MethodPost, "/api/status", map[string]any{"nome": "Aguardando"}, f.admin, http.StatusCreated},
		{"status id invalido", http.MethodPut, "/api/status/x", map[string]any{"nome": "X"}, f.admin, http.StatusBadRequest},
		{"usuarios", http.MethodGet, "/api/usuarios", nil, f.externo, http.StatusOK},
		{"externo ve acessos", http.MethodGet, "/api/usuarios/stats/acessos", nil, f.externo, http.StatusForbidden},
		{"externo cadastra usuario", http.MethodPost, "/api/auth/register", map[string]any{"nome_completo": "Novo", "email": "novo@gabinete.gov.br", "senha": "Senha@Forte123", "nivel_permissao": "supervisor"}, f.externo, http.StatusForbidden},
		{"ativo ausente", http.MethodPatch, "/api/usuarios/" + f.externo.ID.String() + "/status", map[string]any{}, f.admin, http.StatusBadRequest},
		{"me", http.MethodGet, "/api/auth/me", nil, f.externo, http.StatusOK},
		{"cidadaos", http.MethodGet, "/api/cidadaos", nil, f.admin, http.StatusOK},
		{"telefone encontrado", http.MethodGet, "/api/cidadaos/telefone/11987654321", nil, f.admin, http.StatusOK},
		{"comentarios sem demanda", http.MethodGet, "/api/comentarios", nil, f.admin, http.StatusBadRequest},
		{"comentarios da demanda", http.MethodGet, "/api/comentarios/demanda/" + demandaID.String(), nil, f.admin, http.StatusOK},
		{"comentario inexistente", http.MethodGet, "/api/comentarios/" + uuid.NewString(), nil, f.admin, http.StatusNotFound},
		{"externo compartilha demanda alheia", http.MethodPost, "/api/compartilhamento/gerar/" + demandaID.String(), nil, f.externo, http.StatusForbidden},
		{"situacao", http.MethodGet, "/api/compartilhamento/status/" + demandaID.String(), nil, f.admin, http.StatusOK},
		{"link desconhecido", http.MethodGet, "/api/compartilhamento/publico/naoexiste", nil, nil, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := f.do(t, tc.method, tc.path, tc.body, tc.user)
			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d: %v", tc.status, rec.Code, body)
			}
			sucesso, _ := body["sucesso"].(bool)
			if sucesso != (tc.status < 400) {
				t.Fatalf("envelope inconsistente: %v", body)
			}
			if !sucesso {
				if _, ok := body["mensagem"].(string); !ok {
					t.Fatalf("erro sem mensagem: %v", body)
				}
				if _, ok := body["codigo"].(string); !ok {
					t.Fatalf("erro sem codigo: %v", body)
				}
			}
		})
	}
}

func TestLoginEnvelope(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ana@gabinete.gov.br", "senha": "Senha@Forte123"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %v", rec.Code, body)
	}
	if body["token"] == "" || body["usuario"] == nil || body["expires_in"] != float64(3600) {
		t.Fatalf("resposta incompleta: %v", body)
	}
	if _, leaked := body["usuario"].(map[string]any)["senha_hash"]; leaked {
		t.Fatal("hash da senha exposto")
	}

	tests := []struct {
		name   string
		email  string
		senha  string
		status int
		tipo   string
	}{
		{"usuario inexistente", "ninguem@gabinete.gov.br", "x", http.StatusNotFound, usuario.TipoUsuarioNaoEncontrado},
		{"senha errada", "ana@gabinete.gov.br", "errada", http.StatusUnauthorized, usuario.TipoSenhaIncorreta},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := f.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": tc.email, "senha": tc.senha}, nil)
			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if body["tipo"] != tc.tipo {
				t.Fatalf("expected tipo %q got %v", tc.tipo, body["tipo"])
			}
		})
	}
}

func TestCidadaoTelefoneNaoEncontrado(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/cidadaos/telefone/11000000000", nil, f.admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if body["encontrado"] != false {
		t.Fatalf("expected encontrado=false: %v", body)
	}
}

func TestExternoMovesOwnDemanda(t *testing.T) {
	f := newFixture(t)
	id := f.criarDemanda(t, f.externo.ID)

	rec, body := f.do(t, http.MethodPatch, "/api/demandas/"+id.String()+"/status", map[string]any{"status_id": 2}, f.externo)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %v", rec.Code, body)
	}
	if got := body["demanda"].(map[string]any)["status_id"]; got != float64(2) {
		t.Fatalf("expected status 2 got %v", got)
	}

	_, body = f.do(t, http.MethodGet, "/api/demandas/"+id.String()+"/historico", nil, f.externo)
	if n := len(body["historico"].([]any)); n != 2 {
		t.Fatalf("expected 2 history entries got %d", n)
	}
}

func TestPublicShareFlow(t *testing.T) {
	f := newFixture(t)
	id := f.criarDemanda(t, f.admin.ID)

	rec, body := f.do(t, http.MethodPost, "/api/compartilhamento/gerar/"+id.String(), nil, f.admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %v", rec.Code, body)
	}
	token := body["token"].(string)
	if body["link"] != "https://gabinete.example.com/demanda-publica.html?token="+token {
		t.Fatalf("unexpected link %v", body["link"])
	}

	rec, body = f.do(t, http.MethodGet, "/api/compartilhamento/publico/"+token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %v", rec.Code, body)
	}
	pub := body["demanda"].(map[string]any)
	if pub["cidadao"] != "Maria Silva" {
		t.Fatalf("expected first and last name, got %v", pub["cidadao"])
	}
	for _, campo := range []string{"id", "usuario_responsavel_id", "cidadao_id", "telefone"} {
		if _, ok := pub[campo]; ok {
			t.Fatalf("campo %q não deveria ser público", campo)
		}
	}

	rec, _ = f.do(t, http.MethodDelete, "/api/compartilhamento/desativar/"+id.String(), nil, f.admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	rec, body = f.do(t, http.MethodGet, "/api/compartilhamento/publico/"+token, nil, nil)
	if rec.Code != http.StatusNotFound || body["mensagem"] != "Link inválido ou expirado" {
		t.Fatalf("expected revoked link 404, got %d %v", rec.Code, body)
	}
}
