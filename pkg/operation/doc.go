/*
Package operation implements the rename pipeline: list, transform, resolve,
copy, and schedule the source delete.

	+-------------+     +-------------+     +-------------+
	|   Lister    +---->| Transformer +---->|  Resolver   |
	| (all keys)  |     | (new name)  |     | (head, acl) |
	+-------------+     +------+------+     +------+------+
	                           |                   |
	                      skip | dry run           v
	                           |            +-------------+
	                           v            | cleanup.    |
	                    status.Reporter <---+ Begin/Close |
	                                        +------+------+
	                                               |
	                                        cleanup.Pending
	                                        (drained last)

🎯 Purpose:
- Turn a substitution expression into copy+delete pairs for every changed key
- Carry object properties and grants onto the new key
- Never delete a source whose copy did not succeed

🔄 Flow per key:
 1. Listed → Transformed (skip when the key does not change)
 2. Dry run stops here after announcing the rename
 3. Resolved → CopyIssued → CopySucceeded | CopyFailed
 4. CopySucceeded closes the guard, which schedules the delete
 5. After every task has finished the pending deletes are drained

⚡ Error policy:
Listing errors stop the run before any key is touched. Per-key failures are
recorded and, unless FailOnError is set, do not fail the run. With FailOnError
no new key is dispatched after the first failure and Execute returns it.

🔍 Example:

	op, err := operation.NewRenameOperation(operation.Options{
		API:        client,
		Location:   loc,
		Expression: expr,
		Pending:    cleanup.NewPending(),
	})
	err = op.Execute(ctx)
*/
package operation
