package main

import (
	"facegate.io/infrastructure"
	"facegate.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	infrastructure.StartServer()
}
