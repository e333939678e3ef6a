package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"radian-view/bridge"
	"radian-view/config"
	"radian-view/telemetry"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "JSON settings file")
	port := flag.String("port", "", "Serial port (prompted when empty)")
	baud := flag.Int("baud", 0, "Serial baud rate (default from config)")
	strict := flag.Bool("strict", false, "Reject records with the wrong value count")
	demo := flag.Bool("demo", false, "Use generated telemetry instead of a serial port")
	seed := flag.Int64("seed", 1, "Demo generator seed")
	grpcAddr := flag.String("grpc", "", "Read telemetry from a bridge at this address")
	serveAddr := flag.String("serve", "", "Run headless and serve telemetry on this address")
	fullscreen := flag.Bool("fullscreen", false, "Start in fullscreen mode")
	touchBtns := flag.Bool("touch", false, "Enable on-screen touch buttons")
	gpioBtns := flag.Bool("gpio", false, "Poll Raspberry Pi GPIO panel buttons")
	width := flag.Int("width", 0, "Window width (default from config)")
	height := flag.Int("height", 0, "Window height (default from config)")
	flag.Parse()

	log.Println(windowTitle)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != "" {
		cfg.Serial.Port = *port
	}
	if *baud > 0 {
		cfg.Serial.BaudRate = *baud
	}
	if *width > 0 {
		cfg.Window.Width = *width
	}
	if *height > 0 {
		cfg.Window.Height = *height
	}
	if *fullscreen {
		cfg.Window.Fullscreen = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	parser := cfg.Parser()
	if *strict {
		parser.SetStrict(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serveAddr != "" {
		if err := serve(ctx, cfg, parser, *serveAddr, *demo, *seed); err != nil {
			log.Fatalf("Bridge error: %v", err)
		}
		return
	}

	var (
		source telemetry.Source
		name   string
	)
	switch {
	case *demo:
		source, name = telemetry.NewDemo(*seed, parser), "demo"
	case *grpcAddr != "":
		timeout, _ := cfg.ReadTimeout()
		log.Printf("Connecting to bridge at %s", *grpcAddr)
		remote, err := bridge.Dial(*grpcAddr, parser, timeout)
		if err != nil {
			log.Fatalf("Failed to dial bridge: %v", err)
		}
		source, name = remote, *grpcAddr
	default:
		link, err := openSerial(ctx, cfg, parser)
		if err != nil {
			log.Fatalf("Failed to open serial port: %v", err)
		}
		source, name = link, link.PortName()
	}

	app := NewApp(source, name, cfg.GeomField(), cfg.Window.RobotRadiusPct,
		cfg.Window.Width, cfg.Window.Height, cfg.Window.Fullscreen)
	app.showTouchBtns = *touchBtns
	app.useGPIO = *gpioBtns

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		app.Shutdown()
		os.Exit(0)
	}()

	// Run the application
	if err := app.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
	app.Shutdown()
}

// openSerial opens the configured port, asking for one when none is set.
func openSerial(ctx context.Context, cfg *config.Config, parser *telemetry.Parser) (*telemetry.Serial, error) {
	link := cfg.SerialLink()
	if link.Port == "" {
		name, err := telemetry.SelectPort(ctx, telemetry.ListPorts, os.Stdin, os.Stdout, time.Second)
		if err != nil {
			return nil, err
		}
		link.Port = name
	}
	log.Printf("Establishing connection to %s at %d baud", link.Port, link.BaudRate)
	return telemetry.NewSerial(link, parser, nil)
}

// serve runs the headless bridge until ctx is done
func serve(ctx context.Context, cfg *config.Config, parser *telemetry.Parser, addr string, demo bool, seed int64) error {
	var (
		source   telemetry.LineSource
		interval time.Duration
	)
	if demo {
		source, interval = telemetry.NewDemo(seed, parser), 20*time.Millisecond
	} else {
		link, err := openSerial(ctx, cfg, parser)
		if err != nil {
			return err
		}
		source = link
	}
	defer source.Close()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := bridge.NewServer(source, bridge.ServerConfig{Interval: interval})
	return srv.Serve(ctx, lis)
}
