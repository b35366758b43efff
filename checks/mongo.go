package checks

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Mongo returns a check named "mongodb" that pings the primary.
func Mongo(client *mongo.Client, opts ...Option) *PingChecker {
	var ping PingFunc
	if client != nil {
		ping = func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}
	}
	return Ping("mongodb", ping, opts...)
}
