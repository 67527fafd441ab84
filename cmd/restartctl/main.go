package main

import (
	"fmt"
	"os"
)

const usageText = `restartctl coordinates the night broker restart checklist.

Usage:
  restartctl <command> [flags]

Commands:
  status         show session and per-set progress
  start-set      start the next set (operations role)
  complete-step  complete the current checklist step (operations role)
  ack            acknowledge step 11 of the active set (support role)
  new-session    retire a fully completed run and prepare a fresh one
  watch          live terminal view with background polling
  config         print configuration (effective or defaults)
  help           show help

Flags:
  -h, --help   show help

Examples:
  restartctl status
  restartctl start-set
  restartctl complete-step --step 4
  restartctl ack --name "Sam" --id U7
  restartctl config --default
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
