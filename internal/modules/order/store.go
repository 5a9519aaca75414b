// README: Order store backed by PostgreSQL; every write is one transaction.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/pricing"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// CreateOrderGraph persists the parent, its suborders, their items, and
// the initial history rows together; a partial order graph must never
// exist.
func (s *PGStore) CreateOrderGraph(ctx context.Context, p *ParentOrder, subs []*Suborder, events []StatusEvent) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	breakdown, err := json.Marshal(p.FeeBreakdown)
	if err != nil {
		return fmt.Errorf("marshal fee breakdown: %w", err)
	}
	sequence := make([]string, len(p.PickupSequence))
	for i, id := range p.PickupSequence {
		sequence[i] = string(id)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO parent_orders (
            id, customer_id, customer_name, customer_phone, address,
            dest_lat, dest_lng, subtotal, delivery_fee, platform_fee, total,
            route_km, route_minutes, pickup_sequence, fee_breakdown,
            is_fallback, status, status_version, delivery_user_id, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9, $10, $11,
            $12, $13, $14, $15,
            $16, $17, $18, $19, $20
        )`,
		string(p.ID), string(p.CustomerID), p.CustomerName, p.CustomerPhone, p.Address,
		p.DestLat, p.DestLng, p.Subtotal, p.DeliveryFee, p.PlatformFee, p.Total,
		p.RouteKm, p.RouteMinutes, sequence, breakdown,
		p.IsFallback, string(p.Status), p.StatusVersion, toStringPtr(p.DeliveryUserID), p.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		_, err = tx.Exec(ctx, `
            INSERT INTO suborders (
                id, parent_id, shop_id, subtotal,
                pickup_sequence_index, status, status_version, created_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			string(sub.ID), string(sub.ParentID), string(sub.ShopID), sub.Subtotal,
			sub.PickupSequenceIndex, string(sub.Status), sub.StatusVersion, sub.CreatedAt,
		)
		if err != nil {
			return err
		}
		for _, it := range sub.Items {
			_, err = tx.Exec(ctx, `
                INSERT INTO order_items (suborder_id, product_id, quantity, unit_price, line_total)
                VALUES ($1, $2, $3, $4, $5)`,
				string(sub.ID), string(it.ProductID), it.Quantity, it.UnitPrice, it.LineTotal,
			)
			if err != nil {
				return err
			}
		}
	}

	for _, ev := range events {
		if err := appendEvent(ctx, tx, ev); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) GetParent(ctx context.Context, id types.ID) (*ParentOrder, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, customer_id, customer_name, customer_phone, address,
               dest_lat, dest_lng, subtotal, delivery_fee, platform_fee, total,
               route_km, route_minutes, pickup_sequence, fee_breakdown,
               is_fallback, status, status_version, delivery_user_id, created_at
        FROM parent_orders
        WHERE id = $1`, string(id),
	)

	var p ParentOrder
	var sequence []string
	var breakdown []byte
	var driverID *string
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.CustomerName, &p.CustomerPhone, &p.Address,
		&p.DestLat, &p.DestLng, &p.Subtotal, &p.DeliveryFee, &p.PlatformFee, &p.Total,
		&p.RouteKm, &p.RouteMinutes, &sequence, &breakdown,
		&p.IsFallback, &p.Status, &p.StatusVersion, &driverID, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.PickupSequence = make([]types.ID, len(sequence))
	for i, v := range sequence {
		p.PickupSequence[i] = types.ID(v)
	}
	if len(breakdown) > 0 {
		var fb pricing.FeeBreakdown
		if err := json.Unmarshal(breakdown, &fb); err != nil {
			return nil, fmt.Errorf("unmarshal fee breakdown: %w", err)
		}
		p.FeeBreakdown = fb
	}
	if driverID != nil {
		d := types.ID(*driverID)
		p.DeliveryUserID = &d
	}
	return &p, nil
}

func (s *PGStore) GetSuborder(ctx context.Context, id types.ID) (*Suborder, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, parent_id, shop_id, subtotal,
               pickup_sequence_index, status, status_version, created_at
        FROM suborders
        WHERE id = $1`, string(id),
	)

	var sub Suborder
	err := row.Scan(
		&sub.ID, &sub.ParentID, &sub.ShopID, &sub.Subtotal,
		&sub.PickupSequenceIndex, &sub.Status, &sub.StatusVersion, &sub.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.loadItems(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Items = items
	return &sub, nil
}

func (s *PGStore) ListSuborders(ctx context.Context, parentID types.ID) ([]*Suborder, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, parent_id, shop_id, subtotal,
               pickup_sequence_index, status, status_version, created_at
        FROM suborders
        WHERE parent_id = $1
        ORDER BY pickup_sequence_index`, string(parentID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*Suborder
	for rows.Next() {
		var sub Suborder
		err := rows.Scan(
			&sub.ID, &sub.ParentID, &sub.ShopID, &sub.Subtotal,
			&sub.PickupSequenceIndex, &sub.Status, &sub.StatusVersion, &sub.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sub := range subs {
		items, err := s.loadItems(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		sub.Items = items
	}
	return subs, nil
}

func (s *PGStore) UpdateSuborderStatus(ctx context.Context, id types.ID, from, to Status, version int, ev StatusEvent) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE suborders
        SET status = $1, status_version = status_version + 1
        WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	if err := appendEvent(ctx, tx, ev); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *PGStore) UpdateParentStatus(ctx context.Context, id types.ID, from, to Status, version int, ev StatusEvent) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	ok, err := updateParentRow(ctx, tx, id, from, to, version)
	if err != nil || !ok {
		return false, err
	}
	if err := appendEvent(ctx, tx, ev); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// CascadeParentStatus moves the parent and force-transitions its
// non-terminal children in one transaction, appending a history record
// per affected order.
func (s *PGStore) CascadeParentStatus(ctx context.Context, parentID types.ID, from, to Status, version int, actorID *types.ID, notes string) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	ok, err := updateParentRow(ctx, tx, parentID, from, to, version)
	if err != nil || !ok {
		return false, err
	}
	if err := appendEvent(ctx, tx, StatusEvent{
		OrderID:   parentID,
		OrderKind: KindParent,
		Status:    to,
		ActorID:   actorID,
		Notes:     notes,
	}); err != nil {
		return false, err
	}

	rows, err := tx.Query(ctx, `
        UPDATE suborders
        SET status = $1, status_version = status_version + 1
        WHERE parent_id = $2 AND status NOT IN ('delivered', 'cancelled')
        RETURNING id`,
		string(to), string(parentID),
	)
	if err != nil {
		return false, err
	}
	var childIDs []types.ID
	for rows.Next() {
		var id types.ID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, err
		}
		childIDs = append(childIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, id := range childIDs {
		if err := appendEvent(ctx, tx, StatusEvent{
			OrderID:   id,
			OrderKind: KindSuborder,
			Status:    to,
			ActorID:   actorID,
			Notes:     notes,
		}); err != nil {
			return false, err
		}
	}
	return true, tx.Commit(ctx)
}

func (s *PGStore) AssignDriver(ctx context.Context, parentID types.ID, driverID types.ID) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE parent_orders SET delivery_user_id = $1 WHERE id = $2`,
		string(driverID), string(parentID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) loadItems(ctx context.Context, suborderID types.ID) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
        SELECT product_id, quantity, unit_price, line_total
        FROM order_items
        WHERE suborder_id = $1
        ORDER BY id`, string(suborderID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func updateParentRow(ctx context.Context, tx pgx.Tx, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := tx.Exec(ctx, `
        UPDATE parent_orders
        SET status = $1, status_version = status_version + 1
        WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func appendEvent(ctx context.Context, tx pgx.Tx, ev StatusEvent) error {
	created := ev.CreatedAt
	if created.IsZero() {
		_, err := tx.Exec(ctx, `
            INSERT INTO order_status_history (order_id, order_kind, status, actor_id, notes)
            VALUES ($1, $2, $3, $4, $5)`,
			string(ev.OrderID), string(ev.OrderKind), string(ev.Status), toStringPtr(ev.ActorID), ev.Notes,
		)
		return err
	}
	_, err := tx.Exec(ctx, `
        INSERT INTO order_status_history (order_id, order_kind, status, actor_id, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		string(ev.OrderID), string(ev.OrderKind), string(ev.Status), toStringPtr(ev.ActorID), ev.Notes, created,
	)
	return err
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
