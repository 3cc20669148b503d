/*
Package acl translates object access control between the shape the store
reports it in and the shape a copy request accepts it in.

	GetObjectAcl            CopyObject
	+-----------------+     +------------------------------+
	| READ            | --> | x-amz-grant-read             |
	| READ_ACP        | --> | x-amz-grant-read-acp         |
	| WRITE_ACP       | --> | x-amz-grant-write-acp        |
	| FULL_CONTROL    | --> | x-amz-grant-full-control     |
	| WRITE           | --> | (dropped, no copy equivalent)|
	+-----------------+     +------------------------------+

Each grantee is rendered as kind="value", taken from the first present of
its URI, canonical ID and email address. Canned ACLs are looked up in a
fixed table of canonical names.
*/
package acl
