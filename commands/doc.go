// Package commands wraps single Redis string and hash commands.
//
// Every method sends exactly one command over the connection it was built
// with and decodes the reply to a Go type. Errors are returned, with a nil
// reply reported as ErrKeyNotFound so an absent key is never confused with
// an empty value or a failed call.
//
// Usage:
//
//	conn, err := connection.Connect(ctx, "redis://127.0.0.1/")
//	if err != nil { ... }
//	defer conn.Close()
//
//	strs := commands.NewStrings(conn)
//	_ = strs.Set(ctx, "excellent-key", "my-value")
//	v, err := strs.Get(ctx, "excellent-key")
//
// Lenient keeps the older contract where any failure turns into "", 0 or
// []string{""}. It exists for callers ported from that API; new code should
// use Strings and Hashes directly.
package commands
