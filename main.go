package main

import (
	"community-hub-server/routes"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeCloudinary()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = utils.Validate

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Member-Token, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint - CRITICAL for Render
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/me", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
		user.Patch("/profile", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.UpdateUserProfile)
	}

	member := app.Party("/api/member")
	{
		member.Post("/join", routes.JoinSimpleMember)
		member.Get("/me", routes.GetCurrentMember)
	}

	venue := app.Party("/api/venue")
	{
		venue.Get("/", routes.GetVenues)
		venue.Get("/{id:uint}", routes.GetVenue)
		venue.Post("/", utils.MemberOnlyMiddleware, routes.SubmitVenue)
	}

	events := app.Party("/api/events")
	{
		events.Get("/upcoming", routes.GetUpcomingEvents)
		events.Get("/mine", utils.MemberOnlyMiddleware, routes.GetMyEvents)
		events.Post("/", utils.MemberOnlyMiddleware, routes.ProposeEvent)
	}

	// Public RSVP surface: the token in the path is the only credential.
	rsvp := app.Party("/api/rsvp")
	{
		rsvp.Get("/{token}", routes.ResolveInvitation)
		rsvp.Post("/{token}", routes.SubmitRSVP)
	}

	board := app.Party("/api/board")
	{
		board.Get("/", routes.ListBoardMessages)
		board.Post("/", utils.MemberOnlyMiddleware, routes.CreateBoardMessage)
	}

	upload := app.Party("/api/upload")
	{
		upload.Post("/image", utils.MemberOnlyMiddleware, routes.UploadImage)
		upload.Delete("/image", utils.MemberOnlyMiddleware, routes.DeleteUploadedImage)
	}

	admin := app.Party("/api/admin")
	admin.Use(accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/events", routes.AdminListEvents)
		admin.Get("/events/{id:uint}", routes.AdminGetEvent)
		admin.Post("/events/{id:uint}/approve", routes.ApproveEvent)
		admin.Post("/events/{id:uint}/reject", routes.RejectEvent)
		admin.Post("/events/{id:uint}/cancel", routes.CancelEvent)
		admin.Delete("/events/{id:uint}", routes.DeleteEvent)
		admin.Post("/events/{id:uint}/resend", routes.ResendInvite)

		admin.Get("/venues", routes.AdminListVenues)
		admin.Patch("/venues/{id:uint}/status", routes.UpdateVenueStatus)
		admin.Put("/venues/{id:uint}", routes.UpdateVenue)
		admin.Delete("/venues/{id:uint}", routes.DeleteVenue)

		admin.Get("/stats", routes.AdminStats)
		admin.Get("/notifications", routes.AdminListNotifications)
		admin.Patch("/notifications/{id:uint}/read", routes.MarkNotificationRead)
		admin.Get("/stream", routes.AdminEventStream)
	}

	refresh := app.Party("/api/refresh")
	{
		refresh.Post("/", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("Starting server on port %s", port)
	app.Listen(fmt.Sprintf("0.0.0.0:%s", port))
}
