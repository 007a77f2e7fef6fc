package geo

import (
	"context"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/rendis/rentscout/internal/model"
)

func TestRedisStoreGetHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "rentscout:geocode:dizengoff 100")).
		Return(mock.Result(mock.RedisString(`{"lat":32.0809,"lng":34.7806}`)))

	s := NewRedisStoreWithClient(c)
	got, ok, err := s.Get(context.Background(), "dizengoff 100")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if got != (model.Coordinate{Lat: 32.0809, Lng: 34.7806}) {
		t.Errorf("Get = %v", got)
	}
}

func TestRedisStoreGetMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "rentscout:geocode:nowhere")).
		Return(mock.Result(mock.RedisNil()))

	s := NewRedisStoreWithClient(c)
	_, ok, err := s.Get(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected miss")
	}
}

func TestRedisStoreGetError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewRedisStoreWithClient(c)
	if _, _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRedisStoreSetUsesTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "rentscout:geocode:k", `{"lat":1,"lng":2}`, "EX", "3600")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewRedisStoreWithClient(c)
	if err := s.Set(context.Background(), "k", model.Coordinate{Lat: 1, Lng: 2}, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestNewRedisStoreRequiresAddrs(t *testing.T) {
	if _, err := NewRedisStore(RedisConfig{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}
