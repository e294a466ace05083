package main

//go:generate swag init -g cmd/importer/main.go -o docs

// @title           Odds Import API
// @version         0.1.0
// @description     Feed refresh, consensus payload preview, and catalog import controls.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
