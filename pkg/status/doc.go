/*
Package status tracks what happened to every listed key during a rename run.

	+-------------+        +-------------+
	|  operation  | Track  |   Tracker   |
	| (per key)   +------->| (outcomes)  |
	+-------------+        +------+------+
	                              |
	                     +--------+--------+
	                     |                 |
	               +-----+-----+     +-----+-----+
	               |  Counts   |     |  Summary  |
	               | (exit)    |     |  (table)  |
	               +-----------+     +-----------+

🎯 Purpose:
- Record one outcome per key (skipped, dry run, renamed, failed)
- Remember the error for failed keys
- Render the end of run summary

🔄 Flow:
1. The orchestrator calls Track once a key reaches a terminal state
2. The command reads Counts to pick the exit code
3. Summary renders a table of counts and failures

Tracker is safe for concurrent use by every rename task.
*/
package status
