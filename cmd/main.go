package main

import (
	"github.com/nmd-agent/cmd/agent"
)

func main() {
	agent.Execute()
}
