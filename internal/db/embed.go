package db

import _ "embed"

//go:embed migration/schema.sql
var Schema string

// Fixture is a small sample blog used by -seed and the tests.
//
//go:embed data/fixture.sql
var Fixture string
