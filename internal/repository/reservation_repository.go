package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same repository
// code runs inside and outside a transaction.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ReservationRepo is the MySQL implementation of ReservationTxStore.  All
// dates are stored as DATE columns and scanned as UTC midnight values
// (the DSN sets parseTime=true and loc=UTC).  A repo obtained through InTx
// is bound to the transaction and locks the rows it reads.
type ReservationRepo struct {
    db   *sql.DB
    q    querier
    inTx bool
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db, q: db} }

const reservationColumns = `id, user_id, room_id, start_date, end_date, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (ReservationRecord, error) {
    var rec ReservationRecord
    err := row.Scan(&rec.ID, &rec.UserID, &rec.RoomID, &rec.StartDate, &rec.EndDate,
        &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
    return rec, err
}

// InTx runs fn inside a database transaction.  The transaction is rolled
// back when fn returns an error or panics and committed otherwise.
func (r *ReservationRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx ReservationStore) error) error {
    if r.inTx {
        return fn(ctx, r)
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin transaction: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(ctx, &ReservationRepo{db: r.db, q: tx, inTx: true}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit transaction: %w", err)
    }
    committed = true
    return nil
}

// Ping verifies the database connection.
func (r *ReservationRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// FindByID loads one reservation.  Inside a transaction the row is locked
// FOR UPDATE so the read-check-write sequence of the caller is atomic.
func (r *ReservationRepo) FindByID(ctx context.Context, id uint64) (ReservationRecord, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    if r.inTx {
        q += ` FOR UPDATE`
    }
    rec, err := scanReservation(r.q.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return ReservationRecord{}, ErrReservationNotFound
    }
    if err != nil {
        return ReservationRecord{}, fmt.Errorf("find reservation %d: %w", id, err)
    }
    return rec, nil
}

// ExistsByID reports whether a reservation with the id exists.
func (r *ReservationRepo) ExistsByID(ctx context.Context, id uint64) (bool, error) {
    const q = `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = ?)`
    var exists bool
    if err := r.q.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
        return false, fmt.Errorf("check reservation %d: %w", id, err)
    }
    return exists, nil
}

// Search lists reservations matching the optional room and user filters,
// ordered by ascending id and paginated with LIMIT/OFFSET.
func (r *ReservationRepo) Search(ctx context.Context, p SearchParams) ([]ReservationRecord, error) {
    conds := make([]string, 0, 2)
    args := make([]interface{}, 0, 4)
    if p.RoomID != nil {
        conds = append(conds, "room_id = ?")
        args = append(args, *p.RoomID)
    }
    if p.UserID != nil {
        conds = append(conds, "user_id = ?")
        args = append(args, *p.UserID)
    }
    q := `SELECT ` + reservationColumns + ` FROM reservations`
    if len(conds) > 0 {
        q += ` WHERE ` + strings.Join(conds, " AND ")
    }
    q += ` ORDER BY id ASC LIMIT ? OFFSET ?`
    args = append(args, p.Limit, p.Offset)
    return r.queryRecords(ctx, q, args...)
}

// FindAllByStatus returns every reservation with the given status.
func (r *ReservationRepo) FindAllByStatus(ctx context.Context, status string) ([]ReservationRecord, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = ? ORDER BY id ASC`
    return r.queryRecords(ctx, q, status)
}

func (r *ReservationRepo) queryRecords(ctx context.Context, q string, args ...interface{}) ([]ReservationRecord, error) {
    rows, err := r.q.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("query reservations: %w", err)
    }
    defer rows.Close()
    out := make([]ReservationRecord, 0)
    for rows.Next() {
        rec, err := scanReservation(rows)
        if err != nil {
            return nil, fmt.Errorf("scan reservation: %w", err)
        }
        out = append(out, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, fmt.Errorf("iterate reservations: %w", err)
    }
    return out, nil
}

// Insert stores a new reservation and returns it with the generated id and
// timestamps populated.
func (r *ReservationRepo) Insert(ctx context.Context, rec ReservationRecord) (ReservationRecord, error) {
    const q = `INSERT INTO reservations (user_id, room_id, start_date, end_date, status) VALUES (?, ?, ?, ?, ?)`
    res, err := r.q.ExecContext(ctx, q, rec.UserID, rec.RoomID, rec.StartDate, rec.EndDate, rec.Status)
    if err != nil {
        return ReservationRecord{}, fmt.Errorf("insert reservation: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return ReservationRecord{}, fmt.Errorf("insert reservation: %w", err)
    }
    // Query back the full row to populate timestamps and defaults
    return r.FindByID(ctx, uint64(id))
}

// Replace overwrites user, room, dates and status of an existing row.
func (r *ReservationRepo) Replace(ctx context.Context, id uint64, rec ReservationRecord) (ReservationRecord, error) {
    const q = `UPDATE reservations
               SET user_id = ?, room_id = ?, start_date = ?, end_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.q.ExecContext(ctx, q, rec.UserID, rec.RoomID, rec.StartDate, rec.EndDate, rec.Status, id)
    if err != nil {
        return ReservationRecord{}, fmt.Errorf("replace reservation %d: %w", id, err)
    }
    if err := requireAffected(res); err != nil {
        return ReservationRecord{}, err
    }
    return r.FindByID(ctx, id)
}

// SetStatus updates only the status column of a reservation.
func (r *ReservationRepo) SetStatus(ctx context.Context, id uint64, status string) error {
    const q = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    res, err := r.q.ExecContext(ctx, q, status, id)
    if err != nil {
        return fmt.Errorf("set status of reservation %d: %w", id, err)
    }
    return requireAffected(res)
}

// requireAffected maps "no row updated" to ErrReservationNotFound.  The DSN
// sets clientFoundRows so unchanged rows still count as matched.
func requireAffected(res sql.Result) error {
    n, err := res.RowsAffected()
    if err != nil {
        return fmt.Errorf("rows affected: %w", err)
    }
    if n == 0 {
        return ErrReservationNotFound
    }
    return nil
}

// FindConflictingIDs pushes the half-open overlap predicate down to MySQL:
// an existing [start_date, end_date) conflicts with [Start, End) iff
// start_date < End AND Start < end_date.
func (r *ReservationRepo) FindConflictingIDs(ctx context.Context, cq ConflictQuery) ([]uint64, error) {
    q := `SELECT id FROM reservations
          WHERE room_id = ? AND status = ? AND start_date < ? AND end_date > ?`
    args := []interface{}{cq.RoomID, cq.Status, cq.End, cq.Start}
    if cq.ExcludeID != 0 {
        q += ` AND id <> ?`
        args = append(args, cq.ExcludeID)
    }
    q += ` ORDER BY id ASC`
    rows, err := r.q.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("find conflicting reservations: %w", err)
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, fmt.Errorf("scan conflicting id: %w", err)
        }
        ids = append(ids, id)
    }
    if err := rows.Err(); err != nil {
        return nil, fmt.Errorf("iterate conflicting ids: %w", err)
    }
    return ids, nil
}

// LockRoom takes an exclusive lock on the room's row in room_locks, creating
// the row on first use.  The lock is released when the transaction ends.
// Two approvals of overlapping reservations in the same room therefore run
// their conflict checks one after the other.
func (r *ReservationRepo) LockRoom(ctx context.Context, roomID uint64) error {
    if !r.inTx {
        return nil
    }
    const upsert = `INSERT INTO room_locks (room_id) VALUES (?) ON DUPLICATE KEY UPDATE room_id = room_id`
    if _, err := r.q.ExecContext(ctx, upsert, roomID); err != nil {
        return fmt.Errorf("lock room %d: %w", roomID, err)
    }
    const sel = `SELECT room_id FROM room_locks WHERE room_id = ? FOR UPDATE`
    var got uint64
    if err := r.q.QueryRowContext(ctx, sel, roomID).Scan(&got); err != nil {
        return fmt.Errorf("lock room %d: %w", roomID, err)
    }
    return nil
}
