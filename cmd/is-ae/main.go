package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"IntSentry/internal/attacklog"
	"IntSentry/internal/capture"
	"IntSentry/internal/config"
	_ "IntSentry/internal/engine/impl/logger" // Registers the logging-only engines
	_ "IntSentry/internal/engine/impl/oinc"   // Registers the hierarchical engine
	_ "IntSentry/internal/engine/impl/simple" // Registers the hashed sliding-window engine
	"IntSentry/internal/engine/protocol"
	"IntSentry/internal/engine/stream"
	"IntSentry/internal/factory"
	"IntSentry/internal/model"
	"IntSentry/internal/notification"
	"IntSentry/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	trace := flag.Bool("trace", false, "Log every extracted header field.")
	flag.Parse()

	log.Println("Starting is-ae...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	protocol.Trace = *trace

	notifier, closer := buildNotifier(cfg)
	if closer != nil {
		defer closer.Close()
	}

	engine, err := factory.Create(cfg, notifier)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	var stop func()
	switch cfg.Engine.Source {
	case "live":
		sniffer := capture.New(engine)
		if err := sniffer.StartLive(cfg.Engine.Interface); err != nil {
			log.Fatalf("Failed to open interface %s: %v", cfg.Engine.Interface, err)
		}
		stop = func() {
			sniffer.Stop()
			sniffer.Wait()
		}
	case "pcap":
		reader, err := pcap.NewReader(cfg.Engine.PcapFile)
		if err != nil {
			log.Fatalf("Failed to open pcap file %s: %v", cfg.Engine.PcapFile, err)
		}
		sniffer := capture.New(engine)
		sniffer.Start(reader.Packets())
		stop = func() {
			sniffer.Stop()
			sniffer.Wait()
			reader.Close()
		}
	case "nats":
		consumer := stream.NewConsumer(cfg.Probe, engine)
		if err := consumer.Start(); err != nil {
			log.Fatalf("Failed to start stream consumer: %v", err)
		}
		stop = consumer.Stop
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping...")
	stop()

	stats := engine.Stats()
	log.Printf("Engine '%s' stats: seen=%d analyzed=%d skipped=%d attacks=%d",
		engine.Name(), stats.PacketsSeen, stats.PacketsAnalyzed, stats.PacketsSkipped, stats.AttacksNotified)
	log.Println("Shutdown complete.")
}

// buildNotifier assembles the SDN client, wrapped with attack-event
// recording when the log is enabled.
func buildNotifier(cfg *config.Config) (model.Notifier, attacklog.Writer) {
	sdn, err := notification.NewSDNClient(cfg.SDN)
	if err != nil {
		log.Fatalf("Failed to create SDN client: %v", err)
	}
	if !cfg.AttackLog.Enabled {
		return sdn, nil
	}

	writer, err := attacklog.NewClickHouseWriter(cfg.AttackLog.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to create attack-event writer: %v", err)
	}
	return notification.NewTeeNotifier(sdn, writer), writer
}
