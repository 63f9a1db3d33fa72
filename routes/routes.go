package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/esports-arena/tournament-hub/handlers"
	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Wallet       *handlers.WalletHandler
	Transaction  *handlers.TransactionHandler
	Message      *handlers.MessageHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

func SetupRoutes(router *chi.Mux, auth *middleware.Auth, frontendOrigin string, h Handlers) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	organizer := string(models.RoleOrganizer)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Get("/me", h.Auth.Me)
			})
		})

		r.Route("/password-reset", func(r chi.Router) {
			r.Post("/request", h.Auth.ForgotPassword)
			r.Post("/confirm", h.Auth.ResetPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/{id}", h.User.GetUser)
			r.Put("/me/avatar", h.User.UploadAvatar)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(organizer))
				r.Put("/{id}/stats", h.User.UpdateStats)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Get("/my-tournaments", h.Tournament.MyTournaments)
			})

			r.Get("/{id}", h.Tournament.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(auth.RequireRole(organizer))
				r.Post("/", h.Tournament.Create)
				r.Put("/{id}", h.Tournament.Update)
				r.Put("/{id}/room-credentials", h.Tournament.SetRoomCredentials)
				r.Put("/{id}/banner", h.Tournament.UploadBanner)
				r.Delete("/{id}", h.Tournament.Delete)
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", h.Registration.Register)
			r.Get("/my", h.Registration.MyRegistrations)
			r.Get("/tournament/{id}", h.Registration.TournamentRoster)
			r.Delete("/{id}", h.Registration.Cancel)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/my", h.Wallet.MyWallet)
			r.Post("/deposit", h.Wallet.Deposit)
			r.Post("/withdraw", h.Wallet.Withdraw)
			r.Post("/transfer", h.Wallet.Transfer)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(organizer))
				r.Get("/all", h.Wallet.AllWallets)
				r.Post("/admin/add", h.Wallet.AdminAdd)
				r.Post("/admin/deduct", h.Wallet.AdminDeduct)
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/my", h.Transaction.MyTransactions)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(organizer))
				r.Get("/user/{id}", h.Transaction.UserTransactions)
				r.Get("/all", h.Transaction.AllTransactions)
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", h.Message.Create)
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(auth.RequireRole(organizer))
				r.Get("/", h.Message.List)
				r.Put("/{id}/read", h.Message.MarkRead)
				r.Delete("/{id}", h.Message.Delete)
			})
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
