package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return err
	}

	for _, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			return fmt.Errorf("command %s failed: %w", cmd.Name(), err)
		}
	}

	return nil
}
