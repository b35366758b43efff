package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jonwraymond/healthops/health"
)

func TestMongo_Unreachable(t *testing.T) {
	client, err := mongo.Connect(options.Client().
		ApplyURI("mongodb://127.0.0.1:1/?connect=direct").
		SetServerSelectionTimeout(100 * time.Millisecond).
		SetConnectTimeout(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	c := Mongo(client)
	if c.Name() != "mongodb" {
		t.Errorf("Name() = %q, want mongodb", c.Name())
	}

	result := c.Check(context.Background())
	if result.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want unhealthy", result.Status)
	}
	if result.Error == nil {
		t.Error("expected ping error")
	}
}

func TestMongo_NilClient(t *testing.T) {
	result := Mongo(nil).Check(context.Background())
	if !errors.Is(result.Error, health.ErrInvalidArgument) {
		t.Errorf("Error = %v, want ErrInvalidArgument", result.Error)
	}
}
