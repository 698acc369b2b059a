package main

import (
	"embed"

	"github.com/alexraskin/schoolsite/cmd"
)

var (
	version = "dev"
)

//go:embed templates/*.html
var templatesFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

func main() {
	cmd.Execute(cmd.App{
		Version:   version,
		Templates: templatesFiles,
		Static:    staticFiles,
	})
}
