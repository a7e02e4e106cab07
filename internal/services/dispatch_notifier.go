package services

import (
	"context"
	"errors"
	"fmt"

	"tms-backend/internal/models"
)

// Broadcaster delivers realtime messages to connected websocket clients
type Broadcaster interface {
	BroadcastToUser(userID string, data interface{})
	BroadcastToRole(role string, data interface{})
}

// PushSender delivers push notifications to device tokens
type PushSender interface {
	SendRouteAssignedNotification(ctx context.Context, tokens []string, routeID, routeNumber string, stopCount int) error
	SendRouteStatusNotification(ctx context.Context, tokens []string, routeID, routeNumber, status string) error
}

// TokenLookup resolves a user's registered push tokens
type TokenLookup interface {
	TokensForUser(ctx context.Context, userID string) ([]string, error)
}

// DispatchNotifier fans route events out to dispatchers over websocket and to the
// assigned driver over websocket and push.
type DispatchNotifier struct {
	hub    Broadcaster
	push   PushSender
	tokens TokenLookup
}

// NewDispatchNotifier builds a notifier; push and tokens may be nil to disable push
func NewDispatchNotifier(hub Broadcaster, push PushSender, tokens TokenLookup) *DispatchNotifier {
	return &DispatchNotifier{hub: hub, push: push, tokens: tokens}
}

func (n *DispatchNotifier) RouteChanged(ctx context.Context, event RouteEvent) error {
	message := map[string]interface{}{
		"type": string(event.Type),
		"data": event,
	}

	if n.hub != nil {
		n.hub.BroadcastToRole(models.RoleAdmin, message)
		n.hub.BroadcastToRole(models.RoleDispatcher, message)
		if event.DriverUserID != "" {
			n.hub.BroadcastToUser(event.DriverUserID, message)
		}
	}

	if event.DriverUserID == "" || n.push == nil || n.tokens == nil {
		return nil
	}

	var err error
	switch event.Type {
	case RouteEventDriverAssigned:
		err = n.pushToDriver(ctx, event, func(tokens []string) error {
			return n.push.SendRouteAssignedNotification(ctx, tokens, event.Route.ID, event.Route.RouteNumber, event.StopCount)
		})
	case RouteEventStatusChanged:
		err = n.pushToDriver(ctx, event, func(tokens []string) error {
			return n.push.SendRouteStatusNotification(ctx, tokens, event.Route.ID, event.Route.RouteNumber, string(event.Route.Status))
		})
	}
	return err
}

func (n *DispatchNotifier) pushToDriver(ctx context.Context, event RouteEvent, send func(tokens []string) error) error {
	tokens, err := n.tokens.TokensForUser(ctx, event.DriverUserID)
	if err != nil {
		return fmt.Errorf("lookup push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	if err := send(tokens); err != nil {
		return errors.Join(fmt.Errorf("push %s for route %s", event.Type, event.Route.ID), err)
	}
	return nil
}
