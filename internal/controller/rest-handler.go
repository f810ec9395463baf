package controller

import (
	"errors"
	"net/http"

	"github.com/reelfeed/server/internal/client/drama"
	"github.com/reelfeed/server/internal/service/feed"
	"github.com/reelfeed/server/pkg/rest"
)

type signInRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

func (c *controller) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	session, err := c.gateway.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": session})
}

func (c *controller) signUp(w http.ResponseWriter, r *http.Request) {
	var req signInRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	session, err := c.gateway.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": session})
}

// homeConfig degrades to an empty page instead of failing when the
// upstream is unavailable.
func (c *controller) homeConfig(w http.ResponseWriter, r *http.Request) {
	homeConfig, err := c.gateway.GetHomeConfig(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get home config", "error", err)
		rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": drama.HomeConfig{}})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": homeConfig})
}

// registerGuest runs the one-tap guest flow for a feed session. The
// session token issued on the websocket handshake authorizes it.
func (c *controller) registerGuest(w http.ResponseWriter, r *http.Request) {
	claims, err := c.feedService.ParseSessionToken(c.getBearerToken(r))
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "invalid session token"})
		return
	}

	guest, err := c.feedService.RegisterGuest(r.Context(), claims.SessionId)
	if err != nil {
		if errors.Is(err, feed.ErrSessionNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "session not found"})
			return
		}
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": guest})
}

func (c *controller) getUser(w http.ResponseWriter, r *http.Request) {
	userId, err := c.getQueryParam(r, "user-id")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	user, err := c.gateway.GetUser(r.Context(), c.getBearerToken(r), userId)
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": user})
}

type updateNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,max=32"`
}

func (c *controller) updateNickname(w http.ResponseWriter, r *http.Request) {
	var req updateNicknameRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.gateway.UpdateNickname(r.Context(), c.getBearerToken(r), req.Nickname); err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": req.Nickname})
}

type rechargeRequest struct {
	UserId string  `json:"user_id" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gte=0"`
}

func (c *controller) recharge(w http.ResponseWriter, r *http.Request) {
	var req rechargeRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	created, err := c.gateway.Recharge(r.Context(), c.getBearerToken(r), &drama.RechargeParams{
		UserId: req.UserId,
		Amount: req.Amount,
	})
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": created})
}

func (c *controller) rechargeVIP(w http.ResponseWriter, r *http.Request) {
	var req rechargeRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	created, err := c.gateway.RechargeVIP(r.Context(), c.getBearerToken(r), &drama.RechargeParams{
		UserId: req.UserId,
		Amount: req.Amount,
	})
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": created})
}

func (c *controller) chargingRecords(w http.ResponseWriter, r *http.Request) {
	records, err := c.gateway.GetChargingRecords(r.Context(), c.getBearerToken(r))
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": records})
}

func (c *controller) vvvipRecord(w http.ResponseWriter, r *http.Request) {
	record, err := c.gateway.GetVVVIPRecord(r.Context(), c.getBearerToken(r))
	if err != nil {
		c.writeGatewayError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": record})
}

func (c *controller) writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	c.logger.DebugContext(r.Context(), "gateway error", "error", err)

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, drama.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, drama.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, drama.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, drama.ErrConflict):
		status = http.StatusConflict
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}
