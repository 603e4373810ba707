// Package entries caches the last listing of password entries fetched from
// the password manager service.
//
// The cache never holds passwords: the table has no column for them. Rows are
// replaced as a whole on every successful listing, so callers should run
// ReplaceAll inside dbx.WithTx with a repository bound to the transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return entries.NewSQLiteRepository(tx).ReplaceAll(ctx, list, time.Now())
//	})
package entries
