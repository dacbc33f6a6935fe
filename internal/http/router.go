package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/comentario"
	"github.com/gestaozabele/gabinete/internal/compartilhamento"
	"github.com/gestaozabele/gabinete/internal/config"
	"github.com/gestaozabele/gabinete/internal/demanda"
	httpmiddleware "github.com/gestaozabele/gabinete/internal/http/middleware"
	"github.com/gestaozabele/gabinete/internal/passkey"
	"github.com/gestaozabele/gabinete/internal/permissao"
	"github.com/gestaozabele/gabinete/internal/status"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

// Deps reúne conexões e serviços montados em cmd/api.
type Deps struct {
	Pool             *pgxpool.Pool
	Redis            *redis.Client
	Usuarios         *usuario.Service
	Cidadaos         *cidadao.Service
	Status           *status.Service
	Demandas         *demanda.Service
	Comentarios      *comentario.Service
	Compartilhamento *compartilhamento.Service
	Passkeys         *passkey.Service
}

type Handler struct {
	pool             *pgxpool.Pool
	redis            *redis.Client
	usuarios         *usuario.Service
	cidadaos         *cidadao.Service
	status           *status.Service
	demandas         *demanda.Service
	comentarios      *comentario.Service
	compartilhamento *compartilhamento.Service
	passkeys         *passkey.Service
	publicLimiter    *httpmiddleware.RateLimiter
	authLimiter      *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	h := &Handler{
		pool:             deps.Pool,
		redis:            deps.Redis,
		usuarios:         deps.Usuarios,
		cidadaos:         deps.Cidadaos,
		status:           deps.Status,
		demandas:         deps.Demandas,
		comentarios:      deps.Comentarios,
		compartilhamento: deps.Compartilhamento,
		passkeys:         deps.Passkeys,
		publicLimiter:    httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:      httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

			public.Post("/auth/login", h.Login)
			public.Post("/auth/passkey/login/start", h.PasskeyLoginStart)
			public.Post("/auth/passkey/login/finish", h.PasskeyLoginFinish)
			public.Get("/compartilhamento/publico/{token}", h.VisaoPublica)
		})

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.Auth(h.usuarios.JWT()))
			private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

			private.Route("/auth", func(a chi.Router) {
				a.Post("/register", h.Register)
				a.Post("/alterar-senha", h.AlterarSenha)
				a.Get("/me", h.Me)
				a.Post("/passkey/registro/start", h.PasskeyRegistroStart)
				a.Post("/passkey/registro/finish", h.PasskeyRegistroFinish)
			})

			private.Route("/demandas", func(d chi.Router) {
				d.Get("/", h.ListDemandas)
				d.Post("/", h.CreateDemanda)
				d.Get("/kanban", h.Kanban)
				d.Get("/estatisticas", h.EstatisticasDemandas)
				d.Get("/{id}", h.GetDemanda)
				d.Put("/{id}", h.UpdateDemanda)
				d.Delete("/{id}", h.DeleteDemanda)
				d.Patch("/{id}/status", h.TransitionDemanda)
				d.Get("/{id}/historico", h.HistoricoDemanda)
			})

			private.Route("/status", func(s chi.Router) {
				s.Get("/", h.ListStatus)
				s.Post("/", h.CreateStatus)
				s.Put("/{id}", h.UpdateStatus)
				s.Delete("/{id}", h.DeleteStatus)
			})

			private.Route("/usuarios", func(u chi.Router) {
				u.Get("/", h.ListUsuarios)
				u.Get("/stats/acessos", h.EstatisticasAcesso)
				u.Get("/{id}", h.GetUsuario)
				u.Put("/{id}", h.UpdateUsuario)
				u.Patch("/{id}/status", h.SetUsuarioAtivo)
				u.Post("/{id}/resetar-senha", h.ResetarSenha)
			})

			private.Route("/cidadaos", func(c chi.Router) {
				c.Get("/", h.ListCidadaos)
				c.Post("/", h.CreateCidadao)
				c.Get("/telefone/{telefone}", h.FindCidadaoByTelefone)
				c.Get("/{id}", h.GetCidadao)
			})

			private.Route("/comentarios", func(c chi.Router) {
				c.Get("/", h.ListComentarios)
				c.Post("/", h.CreateComentario)
				c.Get("/demanda/{id}", h.ListComentariosDemanda)
				c.Get("/{id}", h.GetComentario)
				c.Delete("/{id}", h.DeleteComentario)
			})

			private.Route("/compartilhamento", func(c chi.Router) {
				c.Post("/gerar/{demandaId}", h.GerarCompartilhamento)
				c.Delete("/desativar/{demandaId}", h.DesativarCompartilhamento)
				c.Get("/status/{demandaId}", h.SituacaoCompartilhamento)
			})
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var dbErr, redisErr error
	if h.pool != nil {
		dbErr = h.pool.Ping(ctx)
	}
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", "")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ready": true})
}

// ator devolve a identidade autenticada; rotas privadas sempre a possuem.
func ator(r *http.Request) permissao.Ator {
	a, _ := httpmiddleware.GetAtor(r.Context())
	return a
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", "")
		return uuid.Nil, false
	}
	return id, true
}
