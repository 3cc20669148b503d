/*
Package config manages configuration parsing and validation for s3rename.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |   HCL   | |   JSON    |
	|  Parser   | | Parser  | |  Parser   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Loads optional defaults from a config file
- Validates the substitution expression, store URL, canned ACL and filters
- Hands a read-only Config to the rest of the program

🔄 Flow:
1. Command line flags are parsed
2. An optional file supplies defaults for any flag not set explicitly
3. Validate checks every value before any store call is made

🔍 Example:

	cfg, err := config.Load(ctx, ".s3rename.yaml")
	cfg.Expression = "s/old/new/"
	cfg.URL = "s3://bucket/prefix"
	err = cfg.Validate(ctx)
*/
package config
