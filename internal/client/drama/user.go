package drama

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) GetUser(ctx context.Context, token, userId string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user/"+userId, token, nil, &user); err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (c *Client) UpdateNickname(ctx context.Context, token, nickname string) error {
	body := map[string]string{"nickname": nickname}
	if err := c.do(ctx, http.MethodPut, "/user/update_nickname", token, body, nil); err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
	}

	return nil
}

type RechargeParams struct {
	UserId string  `json:"userId"`
	Amount float64 `json:"amount"`
}

func (c *Client) Recharge(ctx context.Context, token string, params *RechargeParams) (CreatedOrder, error) {
	var created CreatedOrder
	if err := c.do(ctx, http.MethodPost, "/user/recharge", token, params, &created); err != nil {
		return CreatedOrder{}, fmt.Errorf("failed to recharge: %w", err)
	}

	return created, nil
}

func (c *Client) RechargeVIP(ctx context.Context, token string, params *RechargeParams) (CreatedOrder, error) {
	var created CreatedOrder
	if err := c.do(ctx, http.MethodPost, "/user/recharge_vip", token, params, &created); err != nil {
		return CreatedOrder{}, fmt.Errorf("failed to recharge vip: %w", err)
	}

	return created, nil
}

func (c *Client) GetVVVIPRecord(ctx context.Context, token string) (VVVIPRecord, error) {
	var record VVVIPRecord
	if err := c.do(ctx, http.MethodGet, "/user/vvviprecord", token, nil, &record); err != nil {
		return VVVIPRecord{}, fmt.Errorf("failed to get vvvip record: %w", err)
	}

	return record, nil
}

func (c *Client) GetChargingRecords(ctx context.Context, token string) ([]ChargingRecord, error) {
	var records []ChargingRecord
	if err := c.do(ctx, http.MethodGet, "/user/charging-records", token, nil, &records); err != nil {
		return nil, fmt.Errorf("failed to get charging records: %w", err)
	}

	return records, nil
}
