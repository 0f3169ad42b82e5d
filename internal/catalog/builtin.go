package catalog

import (
	"text/template"

	"github.com/zclconf/go-cty/cty"
)

// tmpl parses a statement template at init time; the built-in templates are
// compile-time constants, so a parse failure is a programmer error.
func tmpl(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// builtinTypes returns the registered object type schemas.
//
// Statement templates receive a flat map: "name" plus every canonical
// attribute key, each value already rendered as a SQL literal. Alter
// templates additionally receive "set", the pre-rendered assignment list for
// the changed fields only.
func builtinTypes() []*Type {
	return []*Type{
		{
			Name: "role",
			Attributes: []Attribute{
				{Key: "comment", Type: cty.String, Default: cty.StringVal("")},
			},
			Templates: Templates{
				StateQuery: tmpl("role.state", `SHOW ROLES LIKE '{{.name}}'`),
				Create:     tmpl("role.create", `CREATE ROLE {{.name}} COMMENT = {{.comment}}`),
				Alter:      tmpl("role.alter", `ALTER ROLE {{.name}} SET {{.set}}`),
				Drop:       tmpl("role.drop", `DROP ROLE IF EXISTS {{.name}}`),
			},
		},
		{
			Name: "user",
			Attributes: []Attribute{
				{Key: "comment", Type: cty.String, Default: cty.StringVal("")},
				{
					Key:        "default_role",
					Type:       cty.String,
					Default:    cty.StringVal(""),
					Identifier: true,
					RefType:    "role",
				},
				{Key: "disabled", Type: cty.Bool, Default: cty.False, LiveKeys: []string{"is_disabled"}},
			},
			Templates: Templates{
				StateQuery: tmpl("user.state", `SHOW USERS LIKE '{{.name}}'`),
				Create:     tmpl("user.create", `CREATE USER {{.name}} COMMENT = {{.comment}} DEFAULT_ROLE = {{.default_role}} DISABLED = {{.disabled}}`),
				Alter:      tmpl("user.alter", `ALTER USER {{.name}} SET {{.set}}`),
				Drop:       tmpl("user.drop", `DROP USER IF EXISTS {{.name}}`),
			},
		},
		{
			Name: "database",
			Attributes: []Attribute{
				{Key: "comment", Type: cty.String, Default: cty.StringVal("")},
				{
					Key:      "retention_days",
					Type:     cty.Number,
					Default:  cty.NumberIntVal(1),
					LiveKeys: []string{"retention_time"},
				},
			},
			Templates: Templates{
				StateQuery: tmpl("database.state", `SHOW DATABASES LIKE '{{.name}}'`),
				Create:     tmpl("database.create", `CREATE DATABASE {{.name}} COMMENT = {{.comment}} DATA_RETENTION_TIME_IN_DAYS = {{.retention_days}}`),
				Alter:      tmpl("database.alter", `ALTER DATABASE {{.name}} SET {{.set}}`),
				Drop:       tmpl("database.drop", `DROP DATABASE IF EXISTS {{.name}}`),
			},
		},
		{
			Name: "schema",
			Attributes: []Attribute{
				{
					Key:        "database",
					Type:       cty.String,
					Identifier: true,
					RefType:    "database",
					LiveKeys:   []string{"database_name"},
				},
				{Key: "comment", Type: cty.String, Default: cty.StringVal("")},
				{
					Key:      "retention_days",
					Type:     cty.Number,
					Default:  cty.NumberIntVal(1),
					LiveKeys: []string{"retention_time"},
				},
			},
			Templates: Templates{
				StateQuery: tmpl("schema.state", `SHOW SCHEMAS LIKE '{{.name}}'`),
				Create:     tmpl("schema.create", `CREATE SCHEMA {{.database}}.{{.name}} COMMENT = {{.comment}} DATA_RETENTION_TIME_IN_DAYS = {{.retention_days}}`),
				Alter:      tmpl("schema.alter", `ALTER SCHEMA {{.database}}.{{.name}} SET {{.set}}`),
				Drop:       tmpl("schema.drop", `DROP SCHEMA IF EXISTS {{.database}}.{{.name}}`),
			},
		},
		{
			Name: "alert",
			Attributes: []Attribute{
				{Key: "schedule", Type: cty.String},
				{Key: "condition", Type: cty.String},
				{Key: "action", Type: cty.String},
				{Key: "comment", Type: cty.String, Default: cty.StringVal("")},
				{Key: "enabled", Type: cty.Bool, Default: cty.True, LiveKeys: []string{"state"}},
			},
			Templates: Templates{
				StateQuery: tmpl("alert.state", `SHOW ALERTS LIKE '{{.name}}'`),
				Create:     tmpl("alert.create", `CREATE ALERT {{.name}} SCHEDULE = {{.schedule}} COMMENT = {{.comment}} IF (EXISTS ({{.condition}})) THEN {{.action}}`),
				Alter:      tmpl("alert.alter", `ALTER ALERT {{.name}} SET {{.set}}`),
				Drop:       tmpl("alert.drop", `DROP ALERT IF EXISTS {{.name}}`),
			},
		},
	}
}
