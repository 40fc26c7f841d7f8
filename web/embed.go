package web

import "embed"

// StaticFS embeds the SPA shell and static assets.
//
//go:embed static/*
var StaticFS embed.FS
