package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go-juno/midi"
	"go-juno/voice"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scanner := midi.DriverScanner{Timeout: 3 * time.Second}

	switch os.Args[1] {
	case "list":
		listPorts(scanner)
	case "monitor":
		match := ""
		if len(os.Args) > 2 {
			match = os.Args[2]
		}
		monitor(ctx, scanner, match)
	case "poll":
		pollDevices(ctx, scanner)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list             - List MIDI input ports")
	fmt.Println("  monitor [name]   - Print messages from the first input matching name")
	fmt.Println("  poll             - Poll for device changes")
}

func listPorts(scanner midi.DriverScanner) {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Printf("(waiting up to %v...)\n", scanner.Timeout)

	ports, err := scanner.Ports()
	if err != nil {
		fmt.Printf("\n%v\n", err)
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for _, p := range ports {
		fmt.Printf("  %s: %s\n", p.ID, p.Name)
	}
}

// printer stands in for the bridge: it prints what would be sent.
type printer struct{}

func (printer) NoteEvent(msg [3]byte) bool {
	fmt.Printf("  %s\n", midi.Message(msg))
	return true
}

func monitor(ctx context.Context, scanner midi.DriverScanner, match string) {
	dm := midi.NewDeviceManager(scanner, time.Second)
	dm.Scan(ctx)

	var port *midi.Port
	for _, p := range dm.Ports() {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(match)) {
			port = &p
			break
		}
	}
	if port == nil {
		fmt.Println("No matching input port")
		return
	}

	tracker := voice.NewTracker(voice.DefaultDisplayCount)
	router := midi.NewRouter(printer{}, tracker, dm)
	defer router.Close()
	if err := router.Select(port.ID); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Monitoring %s. Ctrl+C to exit.\n", port.Name)
	<-ctx.Done()
	fmt.Printf("\n%d notes still held\n", tracker.Count())
}

func pollDevices(ctx context.Context, scanner midi.DriverScanner) {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a controller to test. Ctrl+C to exit.")

	dm := midi.NewDeviceManager(scanner, 2*time.Second)
	go dm.Run(ctx)

	for ev := range dm.Events() {
		fmt.Printf("[%s] %s: %s\n", time.Now().Format("15:04:05"), ev.Type, ev.Port.Name)
	}
}
