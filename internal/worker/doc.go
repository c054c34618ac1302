// Package worker implements the file route worker lifecycle and Redis
// Streams integration.
//
// The worker consumes file events from a Redis stream, routes them, and
// publishes routing decisions to the result stream. Events that fail to
// route are reported on a separate error stream.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	routerInstance := router.New(lang, logger)
//
//	w := worker.NewWorker(cfg, redisClient, routerInstance, defaultRules, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// The worker handles:
//   - Redis Streams subscription and consumer group management
//   - File event parsing and routing
//   - Routing decision publishing
//   - Error handling and reporting
//   - Graceful shutdown
//
// Health checks are provided via a separate HTTP server that reports
// the worker identity, the redis connection and whether a default rule
// set is loaded:
//
//	healthServer := worker.NewHealthServer(8082, cfg.WorkerID, redisClient, rulesLoaded, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
