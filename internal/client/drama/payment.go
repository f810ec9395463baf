package drama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type CreateOrderParams struct {
	UserId string  `json:"userId"`
	Amount float64 `json:"amount"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, params *CreateOrderParams) (CreatedOrder, error) {
	var created CreatedOrder
	if err := c.do(ctx, http.MethodPost, "/user/create_order", token, params, &created); err != nil {
		return CreatedOrder{}, fmt.Errorf("failed to create order: %w", err)
	}

	return created, nil
}

func (c *Client) QueryOrder(ctx context.Context, token, orderId string) (int, error) {
	var status OrderStatus
	body := map[string]string{"orderId": orderId}
	if err := c.do(ctx, http.MethodPost, "/user/query_order", token, body, &status); err != nil {
		return 0, fmt.Errorf("failed to query order: %w", err)
	}

	return status.Status, nil
}

type UnlockEpisodeParams struct {
	UserId    string  `json:"userId"`
	EpisodeId string  `json:"episodeId"`
	Price     float64 `json:"price"`
}

type UnlockVideoParams struct {
	UserId  string  `json:"userId"`
	VideoId string  `json:"videoId"`
	Price   float64 `json:"price"`
}

func (c *Client) UnlockSingleEpisode(ctx context.Context, token string, params *UnlockEpisodeParams) error {
	if err := c.do(ctx, http.MethodPost, "/unlock/single-episode", token, params, nil); err != nil {
		return fmt.Errorf("failed to unlock single episode: %w", err)
	}

	return nil
}

func (c *Client) UnlockAllEpisodes(ctx context.Context, token string, params *UnlockVideoParams) error {
	if err := c.do(ctx, http.MethodPost, "/unlock/all-episodes", token, params, nil); err != nil {
		return fmt.Errorf("failed to unlock all episodes: %w", err)
	}

	return nil
}

// A 400 from the balance endpoints signals insufficient funds, not a
// malformed request, so it is remapped to ErrInsufficientBalance.
func (c *Client) BalanceUnlockSingleEpisode(ctx context.Context, token string, params *UnlockEpisodeParams) error {
	if err := c.do(ctx, http.MethodPost, "/balance/unlock-single-episode", token, params, nil); err != nil {
		if errors.Is(err, ErrBadRequest) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("failed to unlock single episode with balance: %w", err)
	}

	return nil
}

func (c *Client) BalanceUnlockAllEpisodes(ctx context.Context, token string, params *UnlockVideoParams) error {
	if err := c.do(ctx, http.MethodPost, "/balance/unlock-all-episodes", token, params, nil); err != nil {
		if errors.Is(err, ErrBadRequest) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("failed to unlock all episodes with balance: %w", err)
	}

	return nil
}
