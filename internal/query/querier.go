package query

import (
	"context"
	"fmt"
	"time"

	"IntSentry/internal/config"
	"IntSentry/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// AttackQuery filters the attack-event log.
type AttackQuery struct {
	Since time.Time
	Until time.Time
	SrcIP string // optional exact match
	Limit int
}

// Querier reads back persisted attack events.
type Querier interface {
	Attacks(ctx context.Context, q AttackQuery) ([]model.AttackEvent, error)
}

// ClickHouseQuerier implements Querier against the attack_events table.
type ClickHouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier connects to ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (*ClickHouseQuerier, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return &ClickHouseQuerier{conn: conn}, nil
}

// Attacks returns events in the query's time range, newest first.
func (q *ClickHouseQuerier) Attacks(ctx context.Context, aq AttackQuery) ([]model.AttackEvent, error) {
	sql := `SELECT Timestamp, SrcMAC, SrcIP, DstIP, DstPort, PacketSize, AttackType
FROM attack_events
WHERE Timestamp >= ? AND Timestamp <= ?`
	args := []interface{}{aq.Since, aq.Until}
	if aq.SrcIP != "" {
		sql += " AND SrcIP = ?"
		args = append(args, aq.SrcIP)
	}
	sql += " ORDER BY Timestamp DESC"
	if aq.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, aq.Limit)
	}

	rows, err := q.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attack events: %w", err)
	}
	defer rows.Close()

	var events []model.AttackEvent
	for rows.Next() {
		var (
			ev   model.AttackEvent
			size uint32
		)
		if err := rows.Scan(&ev.Timestamp, &ev.SrcMAC, &ev.SrcIP, &ev.DstIP, &ev.DstPort, &size, &ev.AttackType); err != nil {
			return nil, fmt.Errorf("failed to scan attack event: %w", err)
		}
		ev.PacketSize = int(size)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close releases the connection.
func (q *ClickHouseQuerier) Close() error {
	return q.conn.Close()
}
