package redis

import (
	"context"
	"fmt"
)

// FlushForTest removes every key written under the pathway prefix.
func (p *Persistence) FlushForTest(ctx context.Context) error {
	iter := p.client.Scan(ctx, 0, keyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := p.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
	}

	return iter.Err()
}
