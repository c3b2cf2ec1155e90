package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsim/internal/db"
)

// ZRange returns members between ranks start and stop inclusive.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]string, error) {
	r := s.b().Zrange().Key(key).Min(strconv.FormatInt(start, 10)).Max(strconv.FormatInt(stop, 10))
	var cmd rueidis.Completed
	if rev {
		cmd = r.Rev().Build()
	} else {
		cmd = r.Build()
	}
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}
