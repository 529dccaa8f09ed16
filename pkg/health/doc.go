// Package health serves liveness and readiness probes for the resident job.
//
//	srv := health.NewServer(":8081", health.Checks{
//		"postgres":  db.Healthcheck(pool),
//		"scheduler": job.Healthcheck(s),
//	}, health.WithLogger(log))
//	go srv.ListenAndServe(ctx)
//
// GET /health/live always answers OK. GET /health/ready runs every check
// concurrently and answers 503 when any fails. Both answer plain text unless
// the client asks for JSON (Accept: application/json or ?format=json).
package health
