// Package redis connects to Redis and provides the expiring lock that keeps
// overlapping job runs apart.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	unlock, err := redis.NewLocker(client).TryLock(ctx, "emaild:run", 10*time.Minute)
//	if errors.Is(err, redis.ErrLockHeld) {
//		return nil // another run is in progress
//	}
//	defer unlock(ctx)
//
// The lock is a SET NX PX key holding a random token; release deletes the
// key only if it still holds that token.
package redis
