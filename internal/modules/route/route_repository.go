package route

import (
	"context"
	"errors"
	"fmt"

	"robot-route-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the route repository.
type RepositoryInterface interface {
	CartBadge(ctx context.Context, creatorID int) (models.CartBadge, error)
	FindDraftByCreator(ctx context.Context, creatorID int) (*models.Route, error)
	CreateDraft(ctx context.Context, creatorID int) (*models.Route, error)
	AddCommandToDraft(ctx context.Context, creatorID, commandID int) (*models.AddToRouteResponse, error)
	FindByID(ctx context.Context, routeID int) (*models.Route, error)
	List(ctx context.Context, filter models.RouteFilter, creatorID int) ([]models.Route, error)
	UpdateArea(ctx context.Context, routeID int, area string) error
	Form(ctx context.Context, routeID int, ts models.TransitionTimestamps) error
	Finish(ctx context.Context, routeID int, to models.Status, ts models.TransitionTimestamps, comment *string) error
	FindRouteCommand(ctx context.Context, lineItemID int) (*models.RouteCommand, int, models.Status, error)
	UpdateRouteCommand(ctx context.Context, lineItemID int, req models.UpdateRouteCommandRequest) error
	DeleteRouteCommand(ctx context.Context, lineItemID int) error
	SetResult(ctx context.Context, routeID int, result string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new route repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const routeColumns = `r.id, r.status, r.creator_id, u.username, r.created_at, r.formed_at, r.ended_at, r.area, r.result, r.comment`

// scanRoute is a helper to scan a joined routes/users row into a Route model.
func scanRoute(row pgx.Row) (*models.Route, error) {
	var route models.Route
	err := row.Scan(
		&route.ID,
		&route.Status,
		&route.CreatorID,
		&route.CreatorName,
		&route.CreatedAt,
		&route.FormedAt,
		&route.EndedAt,
		&route.Area,
		&route.Result,
		&route.Comment,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan route: %w", err)
	}
	return &route, nil
}

// CartBadge returns the caller's draft id and its line item count without
// loading the full aggregate.
func (r *Repository) CartBadge(ctx context.Context, creatorID int) (models.CartBadge, error) {
	query := `
		SELECT r.id, COUNT(rc.id)
		FROM routes r
		LEFT JOIN route_commands rc ON rc.route_id = r.id
		WHERE r.creator_id = $1 AND r.status = 'draft'
		GROUP BY r.id`

	var badge models.CartBadge
	var routeID int
	err := r.db.QueryRow(ctx, query, creatorID).Scan(&routeID, &badge.ItemsCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CartBadge{}, nil // no draft
		}
		return models.CartBadge{}, fmt.Errorf("repository.CartBadge: %w", err)
	}
	badge.RouteID = &routeID
	return badge, nil
}

// FindDraftByCreator retrieves the caller's draft with its line items.
func (r *Repository) FindDraftByCreator(ctx context.Context, creatorID int) (*models.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes r
		JOIN users u ON u.id = r.creator_id
		WHERE r.creator_id = $1 AND r.status = 'draft'`

	route, err := scanRoute(r.db.QueryRow(ctx, query, creatorID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindDraftByCreator: %w", err)
	}
	if err := r.loadRouteCommands(ctx, route); err != nil {
		return nil, fmt.Errorf("repository.FindDraftByCreator: %w", err)
	}
	return route, nil
}

// CreateDraft inserts an empty draft for the creator. The partial unique
// index on routes(creator_id) WHERE status='draft' keeps this to one per user.
func (r *Repository) CreateDraft(ctx context.Context, creatorID int) (*models.Route, error) {
	query := `
		WITH inserted AS (
			INSERT INTO routes (creator_id, status)
			VALUES ($1, 'draft')
			RETURNING id, status, creator_id, created_at, formed_at, ended_at, area, result, comment
		)
		SELECT i.id, i.status, i.creator_id, u.username, i.created_at, i.formed_at, i.ended_at, i.area, i.result, i.comment
		FROM inserted i
		JOIN users u ON u.id = i.creator_id`

	route, err := scanRoute(r.db.QueryRow(ctx, query, creatorID))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateDraft: %w", err)
	}
	route.RouteCommands = []models.RouteCommand{}
	return route, nil
}

// AddCommandToDraft appends a line item with default execution parameters to
// the caller's draft, creating the draft first if none exists. The whole
// sequence runs in one transaction so the caller never observes a draft
// without the new item.
func (r *Repository) AddCommandToDraft(ctx context.Context, creatorID, commandID int) (*models.AddToRouteResponse, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.AddCommandToDraft.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var commandName string
	err = tx.QueryRow(ctx, `SELECT name FROM commands WHERE id = $1 AND status = 'active'`, commandID).Scan(&commandName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.AddCommandToDraft.FindCommand: %w", err)
	}

	var routeID int
	err = tx.QueryRow(ctx, `SELECT id FROM routes WHERE creator_id = $1 AND status = 'draft' FOR UPDATE`, creatorID).Scan(&routeID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lazily create the draft. A concurrent insert loses against the
		// partial unique index, in which case we pick up the winner's row.
		err = tx.QueryRow(ctx, `
			INSERT INTO routes (creator_id, status) VALUES ($1, 'draft')
			ON CONFLICT (creator_id) WHERE status = 'draft' DO NOTHING
			RETURNING id`, creatorID).Scan(&routeID)
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx, `SELECT id FROM routes WHERE creator_id = $1 AND status = 'draft'`, creatorID).Scan(&routeID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("repository.AddCommandToDraft.Draft: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO route_commands (route_id, command_id, command_name, speed, value, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		routeID, commandID, commandName, models.DefaultSpeed, models.DefaultValue, models.DefaultQuantity)
	if err != nil {
		return nil, fmt.Errorf("repository.AddCommandToDraft.Insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.AddCommandToDraft.Commit: %w", err)
	}
	return &models.AddToRouteResponse{RouteID: routeID, CommandName: commandName}, nil
}

// FindByID retrieves a single route with its line items.
func (r *Repository) FindByID(ctx context.Context, routeID int) (*models.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes r
		JOIN users u ON u.id = r.creator_id
		WHERE r.id = $1`

	route, err := scanRoute(r.db.QueryRow(ctx, query, routeID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	if err := r.loadRouteCommands(ctx, route); err != nil {
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return route, nil
}

// loadRouteCommands fills the route's line items in insertion order.
func (r *Repository) loadRouteCommands(ctx context.Context, route *models.Route) error {
	query := `
		SELECT id, route_id, command_id, command_name, speed, value, quantity
		FROM route_commands
		WHERE route_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, route.ID)
	if err != nil {
		return fmt.Errorf("loadRouteCommands.Query: %w", err)
	}
	defer rows.Close()

	route.RouteCommands = []models.RouteCommand{}
	for rows.Next() {
		var rc models.RouteCommand
		if err := rows.Scan(&rc.ID, &rc.RouteID, &rc.CommandID, &rc.CommandName, &rc.Speed, &rc.Value, &rc.Quantity); err != nil {
			return fmt.Errorf("loadRouteCommands.Scan: %w", err)
		}
		route.RouteCommands = append(route.RouteCommands, rc)
	}
	return rows.Err()
}

// List retrieves route summaries most-recent-first, without line items.
// creatorID > 0 scopes the listing to that creator; 0 is unscoped (moderator
// view). Drafts never appear in listings; the caller's own draft is served by
// FindDraftByCreator.
func (r *Repository) List(ctx context.Context, filter models.RouteFilter, creatorID int) ([]models.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes r
		JOIN users u ON u.id = r.creator_id
		WHERE r.status <> 'draft'
		  AND ($1 = 0 OR r.creator_id = $1)
		  AND ($2 = '' OR r.status = $2)
		  AND ($3::timestamptz IS NULL OR r.formed_at >= $3)
		  AND ($4::timestamptz IS NULL OR r.formed_at <= $4)
		  AND ($5 = '' OR u.username ILIKE '%' || $5 || '%')
		ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.Query(ctx, query, creatorID, string(filter.Status), filter.FormedFrom, filter.FormedTo, filter.Creator)
	if err != nil {
		return nil, fmt.Errorf("repository.List.Query: %w", err)
	}
	defer rows.Close()

	routes := []models.Route{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List.Scan: %w", err)
		}
		routes = append(routes, *route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.List.Rows: %w", err)
	}
	return routes, nil
}

// UpdateArea rewrites the environment descriptor while the route is a draft.
func (r *Repository) UpdateArea(ctx context.Context, routeID int, area string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE routes SET area = $1 WHERE id = $2 AND status = 'draft'`, area, routeID)
	if err != nil {
		return fmt.Errorf("repository.UpdateArea: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStatusConflict // no longer a draft (or gone)
	}
	return nil
}

// Form moves a draft to formed. The status and non-emptiness checks live in
// the UPDATE itself so a concurrent last-item delete can never produce a
// formed route with zero commands.
func (r *Repository) Form(ctx context.Context, routeID int, ts models.TransitionTimestamps) error {
	query := `
		UPDATE routes
		SET status = 'formed', formed_at = COALESCE(formed_at, $2)
		WHERE id = $1
		  AND status = 'draft'
		  AND EXISTS (SELECT 1 FROM route_commands WHERE route_id = $1)`

	cmdTag, err := r.db.Exec(ctx, query, routeID, ts.FormedAt)
	if err != nil {
		return fmt.Errorf("repository.Form: %w", err)
	}
	if cmdTag.RowsAffected() != 0 {
		return nil
	}

	// Decide which precondition lost the race.
	var status models.Status
	if err := r.db.QueryRow(ctx, `SELECT status FROM routes WHERE id = $1`, routeID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.Form.Recheck: %w", err)
	}
	if status != models.StatusDraft {
		return models.ErrStatusConflict
	}
	return models.ErrEmptyRoute
}

// Finish applies a terminal transition. The expected source status is part of
// the WHERE clause, so a repeated or concurrent terminal call affects zero
// rows and fails instead of overwriting ended_at.
func (r *Repository) Finish(ctx context.Context, routeID int, to models.Status, ts models.TransitionTimestamps, comment *string) error {
	query := `
		UPDATE routes
		SET status = $2, ended_at = COALESCE(ended_at, $3), comment = COALESCE($4, comment)
		WHERE id = $1 AND status = 'formed'`

	cmdTag, err := r.db.Exec(ctx, query, routeID, string(to), ts.EndedAt, comment)
	if err != nil {
		return fmt.Errorf("repository.Finish: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

// FindRouteCommand retrieves a line item together with its parent route's
// creator and status, which the service needs for ownership and draft checks.
func (r *Repository) FindRouteCommand(ctx context.Context, lineItemID int) (*models.RouteCommand, int, models.Status, error) {
	query := `
		SELECT rc.id, rc.route_id, rc.command_id, rc.command_name, rc.speed, rc.value, rc.quantity,
		       r.creator_id, r.status
		FROM route_commands rc
		JOIN routes r ON r.id = rc.route_id
		WHERE rc.id = $1`

	var rc models.RouteCommand
	var creatorID int
	var status models.Status
	err := r.db.QueryRow(ctx, query, lineItemID).Scan(
		&rc.ID, &rc.RouteID, &rc.CommandID, &rc.CommandName, &rc.Speed, &rc.Value, &rc.Quantity,
		&creatorID, &status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, "", models.ErrNotFound
		}
		return nil, 0, "", fmt.Errorf("repository.FindRouteCommand: %w", err)
	}
	return &rc, creatorID, status, nil
}

// UpdateRouteCommand rewrites a line item's execution parameters. The join
// against the parent's status keeps formed routes frozen even under races.
func (r *Repository) UpdateRouteCommand(ctx context.Context, lineItemID int, req models.UpdateRouteCommandRequest) error {
	query := `
		UPDATE route_commands rc
		SET speed = $2, value = $3, quantity = $4
		FROM routes r
		WHERE rc.id = $1 AND r.id = rc.route_id AND r.status = 'draft'`

	cmdTag, err := r.db.Exec(ctx, query, lineItemID, req.Speed, req.Value, req.Quantity)
	if err != nil {
		return fmt.Errorf("repository.UpdateRouteCommand: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

// DeleteRouteCommand removes a line item from a draft.
func (r *Repository) DeleteRouteCommand(ctx context.Context, lineItemID int) error {
	query := `
		DELETE FROM route_commands rc
		USING routes r
		WHERE rc.id = $1 AND r.id = rc.route_id AND r.status = 'draft'`

	cmdTag, err := r.db.Exec(ctx, query, lineItemID)
	if err != nil {
		return fmt.Errorf("repository.DeleteRouteCommand: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

// SetResult writes the calculation result exactly once.
func (r *Repository) SetResult(ctx context.Context, routeID int, result string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE routes SET result = $1 WHERE id = $2 AND result IS NULL`, result, routeID)
	if err != nil {
		return fmt.Errorf("repository.SetResult: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrResultAlreadySet
	}
	return nil
}
