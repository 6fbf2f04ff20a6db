// Package sqllog — обёртка database/sql, пишущая записи доступа к данным.
//
// Каждый запрос выполняется через oplog.OperationTime: длительность, ошибки
// и span запроса попадают в лог и метрики фасада, успешный доступ
// дополнительно пишется записью DataAccess.
//
//	db, err := sqllog.Open(ctx, opts, facade)
//	res, err := db.Exec(ctx, sqllog.Access{Action: "UPDATE", Resource: "revenue", ID: "2024-Q3"},
//		"UPDATE revenue SET amount = @p1 WHERE period = @p2", amount, period)
package sqllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kargones/emprev/internal/oplog"
	"github.com/Kargones/emprev/internal/pkg/apperrors"
	"github.com/Kargones/emprev/internal/pkg/urlutil"

	// blank import для драйвера SQL Server
	_ "github.com/denisenkom/go-mssqldb"
)

// DriverName — имя драйвера go-mssqldb в database/sql.
const DriverName = "sqlserver"

// Access описывает обращение к данным для записи DataAccess.
type Access struct {
	// Action — вид доступа: READ, INSERT, UPDATE, DELETE.
	Action string
	// Resource — таблица или сущность (employee, revenue).
	Resource string
	// ID — идентификатор записи; пустой для выборок.
	ID string
}

func (a Access) operation() string {
	return "sql " + a.Action + " " + a.Resource
}

// DB — *sql.DB с записью обращений через фасад.
type DB struct {
	db     *sql.DB
	facade *oplog.Facade
}

// New оборачивает открытое соединение.
func New(db *sql.DB, f *oplog.Facade) *DB {
	return &DB{db: db, facade: f}
}

// Open подключается к SQL Server и проверяет соединение.
func Open(ctx context.Context, opts Options, f *oplog.Facade) (*DB, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrDBOpen, "некорректные параметры подключения", err)
	}

	dsn := opts.connString()
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrDBOpen,
			fmt.Sprintf("не удалось открыть %s", urlutil.MaskDSN(dsn)), err)
	}

	d := New(db, f)
	if err := d.Ping(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // исходная ошибка важнее
		return nil, err
	}
	return d, nil
}

// errNotConnected возвращается после Close.
var errNotConnected = apperrors.NewAppError(apperrors.ErrDBOpen, "connection not established", nil)

// Ping проверяет доступность сервера.
func (d *DB) Ping(ctx context.Context) error {
	if d.db == nil {
		return errNotConnected
	}
	ping := oplog.OperationTime[struct{}](d.facade, "sql ping", func(ctx context.Context) (struct{}, error) {
		if err := d.db.PingContext(ctx); err != nil {
			return struct{}{}, apperrors.NewAppError(apperrors.ErrDBOpen, "ping failed", withContextErr(ctx, err))
		}
		return struct{}{}, nil
	})
	_, err := ping(ctx)
	return err
}

// Exec выполняет изменяющий запрос.
func (d *DB) Exec(ctx context.Context, a Access, query string, args ...any) (sql.Result, error) {
	if d.db == nil {
		return nil, errNotConnected
	}
	exec := oplog.OperationTime[sql.Result](d.facade, a.operation(), func(ctx context.Context) (sql.Result, error) {
		res, err := d.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, queryError(ctx, a, err)
		}
		return res, nil
	})

	res, err := exec(ctx)
	if err == nil {
		d.facade.DataAccess(ctx, a.Action, a.Resource, a.ID)
	}
	return res, err
}

// Query выполняет выборку и передаёт каждую строку в scan.
// Rows закрываются до возврата.
func (d *DB) Query(ctx context.Context, a Access, query string, scan func(*sql.Rows) error, args ...any) error {
	if d.db == nil {
		return errNotConnected
	}
	run := oplog.OperationTime[int](d.facade, a.operation(), func(ctx context.Context) (int, error) {
		rows, err := d.db.QueryContext(ctx, query, args...)
		if err != nil {
			return 0, queryError(ctx, a, err)
		}
		defer rows.Close()

		n := 0
		for rows.Next() {
			if err := scan(rows); err != nil {
				return n, queryError(ctx, a, err)
			}
			n++
		}
		if err := rows.Err(); err != nil {
			return n, queryError(ctx, a, err)
		}
		return n, nil
	})

	if _, err := run(ctx); err != nil {
		return err
	}
	d.facade.DataAccess(ctx, a.Action, a.Resource, a.ID)
	return nil
}

// QueryRow выполняет выборку одной строки и передаёт её в scan.
// Отсутствие строки не считается сбоем запроса: возвращается
// OPERATION.NOT_FOUND, запись DataAccess не пишется.
func (d *DB) QueryRow(ctx context.Context, a Access, query string, scan func(*sql.Row) error, args ...any) error {
	if d.db == nil {
		return errNotConnected
	}
	run := oplog.OperationTime[bool](d.facade, a.operation(), func(ctx context.Context) (bool, error) {
		err := scan(d.db.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, queryError(ctx, a, err)
		}
		return true, nil
	})

	found, err := run(ctx)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewAppError(apperrors.ErrNotFound,
			fmt.Sprintf("%s %s %s", a.Action, a.Resource, a.ID), sql.ErrNoRows)
	}
	d.facade.DataAccess(ctx, a.Action, a.Resource, a.ID)
	return nil
}

// Close закрывает соединение.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// queryError оборачивает ошибку драйвера. Драйверы сообщают об отмене
// собственными ошибками, поэтому при завершённом ctx причиной становится ctx.Err().
func queryError(ctx context.Context, a Access, err error) error {
	return apperrors.NewAppError(apperrors.ErrDBQuery,
		fmt.Sprintf("%s %s", a.Action, a.Resource), withContextErr(ctx, err))
}

func withContextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
