package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mithrel/stackshelf/pkg/api"
)

// Store is the essay catalog shared by every author.
type Store interface {
	// Upsert inserts e under author, or updates the stored copy when an
	// essay with the same ID exists. Updates keep the original position.
	Upsert(ctx context.Context, author string, e api.Essay) error
	// UpsertMany is Upsert for a batch, applied atomically where the
	// backend supports it.
	UpsertMany(ctx context.Context, author string, es api.Essays) error
	List(ctx context.Context, q ListQuery) (api.Essays, error)
	Get(ctx context.Context, id string) (Record, error)
	Authors(ctx context.Context) ([]AuthorStat, error)
	Delete(ctx context.Context, id string) error
	// Seen reports whether any author has an essay from sourceURL.
	Seen(ctx context.Context, sourceURL string) (bool, error)
	Close() error
}

var ErrNotFound = errors.New("not found")

// Record is a stored essay with its catalog metadata.
type Record struct {
	Author    string
	Essay     api.Essay
	ScrapedAt time.Time
}

// AuthorStat is one author and how many essays the catalog holds.
type AuthorStat struct {
	Name   string
	Essays int
}

// Order selects the List sort key.
type Order int

const (
	OrderOriginal Order = iota // insertion order
	OrderDate
	OrderLikes
)

func (o Order) String() string {
	switch o {
	case OrderDate:
		return "date"
	case OrderLikes:
		return "likes"
	default:
		return "original"
	}
}

// ParseOrder accepts "original", "date" or "likes"; empty means original.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "original":
		return OrderOriginal, nil
	case "date":
		return OrderDate, nil
	case "likes":
		return OrderLikes, nil
	}
	return 0, fmt.Errorf("invalid order %q (want original|date|likes)", s)
}

// ListQuery filters and orders List. Ties on the sort key keep insertion
// order in both directions.
type ListQuery struct {
	Author string
	Order  Order
	Desc   bool
	Limit  int
}

// Open returns the Store for dsn (sqlite://path or a bare path). Builds
// with the mem tag always return an in-memory store.
func Open(ctx context.Context, dsn string) (Store, error) {
	return openSQLite(ctx, dsn)
}

// unixDate is the sortable form of an essay date. Unparseable dates map
// to the zero time and sort first.
func unixDate(e api.Essay) int64 {
	return e.Time().Unix()
}
