package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-service/internal/config"
	"social-service/internal/db"
	"social-service/internal/events"
	"social-service/internal/handlers"
	"social-service/internal/identity"
	"social-service/internal/middleware"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.OTLPEndpoint, cfg.AppEnv)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	var cache *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		cache = redis.NewClient(opts)
		defer cache.Close()
	} else {
		log.Println("redis: REDIS_URL not set, engagement counter mirror disabled")
	}

	publisher := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("events: publisher mode=%s exchange=%s", events.PublisherMode(publisher), cfg.AMQPExchange)

	verifier := identity.NewVerifier(cfg.IdentitySecret, cfg.IdentityIssuer)

	userRepo := repositories.NewUserRepo(database)
	friendRepo := repositories.NewFriendRepo(database)
	circleRepo := repositories.NewCircleRepo(database)
	convRepo := repositories.NewConversationRepo(database)
	forumRepo := repositories.NewForumRepo(database)

	hub := ws.NewHub()

	healthHandler := handlers.NewHealthHandler(database, publisher)
	friendHandler := handlers.NewFriendHandler(friendRepo, circleRepo, userRepo, hub, publisher)
	circleHandler := handlers.NewCircleHandler(circleRepo, friendRepo, hub, publisher)
	convHandler := handlers.NewConversationHandler(convRepo, userRepo, hub, publisher)
	forumHandler := handlers.NewForumHandler(forumRepo, cache)
	convWS := ws.NewConversationWSHandler(hub, convRepo, verifier, publisher)
	circleWS := ws.NewCircleWSHandler(hub, circleRepo, verifier, publisher)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware("social-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.Authenticate(verifier, userRepo))
	verified := middleware.RequireVerified()

	api.POST("/friends/requests", verified, friendHandler.SendRequest)
	api.POST("/friends/requests/:request_id/accept", verified, friendHandler.AcceptRequest)
	api.POST("/friends/requests/:request_id/reject", verified, friendHandler.RejectRequest)
	api.GET("/friends", friendHandler.ListFriends)
	api.GET("/friends/requests", friendHandler.ListPending)
	api.DELETE("/friends/:user_id", verified, friendHandler.RemoveFriend)

	api.POST("/circles", verified, circleHandler.CreateCircle)
	api.GET("/circles", circleHandler.ListMine)
	api.GET("/circles/matches", circleHandler.Matches)
	api.GET("/circles/:circle_id", circleHandler.GetCircle)
	api.POST("/circles/:circle_id/join", verified, circleHandler.Join)
	api.POST("/circles/:circle_id/invite", verified, circleHandler.Invite)
	api.DELETE("/circles/:circle_id/members/me", verified, circleHandler.Leave)

	api.POST("/messages", verified, convHandler.SendMessage)
	api.GET("/conversations", convHandler.ListConversations)
	api.GET("/conversations/:conversation_id/messages", convHandler.ListMessages)
	api.POST("/conversations/:conversation_id/read", verified, convHandler.MarkRead)

	api.POST("/forums/:forum_id/posts", verified, forumHandler.CreatePost)
	api.GET("/forums/:forum_id/posts", forumHandler.ListPosts)
	api.POST("/posts/:post_id/upvote", verified, forumHandler.ToggleUpvote)
	api.POST("/posts/:post_id/like", verified, forumHandler.ToggleLike)
	api.POST("/posts/:post_id/comments", verified, forumHandler.AddComment)
	api.GET("/posts/:post_id/comments", forumHandler.ListComments)
	api.DELETE("/posts/:post_id", verified, forumHandler.DeletePost)

	// Websocket routes authenticate inside the handler so browser clients can
	// pass the token as a query parameter.
	router.GET("/ws/conversations/:conversation_id", convWS.Handle)
	router.GET("/ws/circles/:circle_id", circleWS.Handle)

	log.Printf("social-service listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
