package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql web
var FS embed.FS

// Migrations returns the SQL migration files rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Web returns the static UI rooted at "web".
func Web() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}
