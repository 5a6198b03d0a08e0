package routes

import (
	"time"

	"github.com/Bekzhan05/quiz-platform/handlers"
	"github.com/Bekzhan05/quiz-platform/middleware"
	"github.com/Bekzhan05/quiz-platform/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Tournament   *handlers.TournamentHandler
	Participant  *handlers.ParticipantHandler
	Question     *handlers.QuestionHandler
	Ticket       *handlers.TicketHandler
	Notification *handlers.NotificationHandler
	Achievement  *handlers.AchievementHandler
	WebSocket    *handlers.WebSocketHandler
}

// requestTimeout ограничивает обработку запроса: по его истечении
// контекст отменяется, запросы к БД обрываются и клиент получает 503.
const requestTimeout = 30 * time.Second

func SetupRoutes(h Handlers, jwtSecret []byte, allowedOrigins []string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(requestTimeout))

	corsOrigins := allowedOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	// WebSocket-канал публичный: лидерборд видно без авторизации.
	router.Get("/ws/tournaments/{tournamentID}/leaderboard", h.WebSocket.ServeLeaderboard)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/slug/{slug}", h.Tournament.GetBySlug)
		r.Get("/{tournamentID}/window", h.Tournament.Window)
		r.Get("/{tournamentID}/leaderboard", h.Participant.Leaderboard)
		r.Get("/{tournamentID}/summary", h.Participant.Summary)
		r.Get("/{tournamentID}/questions", h.Question.List)

		// Любой авторизованный пользователь
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/{tournamentID}/participants", h.Participant.Register)
		})

		// Только модераторы и администраторы
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(models.RoleModerator, models.RoleAdmin))

			r.Post("/", h.Tournament.Create)
			r.Put("/{tournamentID}", h.Tournament.Update)
			r.Patch("/{tournamentID}/status", h.Tournament.ChangeStatus)
			r.Delete("/{tournamentID}", h.Tournament.Delete)
			r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)
			r.Post("/{tournamentID}/leaderboard/snapshot", h.Participant.SnapshotPositions)
			r.Post("/{tournamentID}/questions", h.Question.Create)
		})
	})

	router.Route("/participants", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/{participantID}/answers", h.Participant.SubmitAnswer)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(models.RoleModerator, models.RoleAdmin))

			r.Post("/{participantID}/score", h.Participant.AddScore)
		})
	})

	router.Route("/questions", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(models.RoleModerator, models.RoleAdmin))

		r.Put("/{questionID}", h.Question.Update)
		r.Delete("/{questionID}", h.Question.Delete)
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", h.User.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Get("/me", h.User.Me)
			r.Put("/me", h.User.UpdateProfile)
			r.Post("/me/avatar", h.User.UploadAvatar)
		})
	})

	router.Route("/tickets", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Post("/", h.Ticket.Create)
		r.Get("/mine", h.Ticket.ListMine)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleModerator, models.RoleAdmin))

			r.Get("/", h.Ticket.ListByStatus)
			r.Patch("/{ticketID}/status", h.Ticket.ChangeStatus)
		})
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/", h.Notification.List)
		r.Patch("/{notificationID}/read", h.Notification.MarkRead)
		r.Patch("/read-all", h.Notification.MarkAllRead)
	})

	router.Route("/achievements", func(r chi.Router) {
		r.Get("/", h.Achievement.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Get("/mine", h.Achievement.ListMine)
		})
	})

	return router
}
