package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"IntSentry/internal/config"
	"IntSentry/internal/engine/protocol"
	"IntSentry/internal/model"
	"IntSentry/internal/probe"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

const (
	snapshotLen int32 = 1600
	promiscuous       = true
	timeout           = pcap.BlockForever
)

func main() {
	mode := flag.String("mode", "pub", "Operating mode: 'pub' to capture and publish records, 'sub' to subscribe and print, 'log' to capture and log locally.")
	iface := flag.String("iface", "", "Interface to capture packets from (pub and log modes).")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *mode {
	case "pub":
		runProbe(cfg, *iface, false)
	case "log":
		runProbe(cfg, *iface, true)
	case "sub":
		runSubscriber(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runProbe captures frames on the interface, extracts flow records for the
// configured hop count, and either publishes them to NATS or just logs them.
func runProbe(cfg *config.Config, interfaceName string, logOnly bool) {
	if interfaceName == "" {
		interfaceName = cfg.Engine.Interface
	}
	if interfaceName == "" {
		log.Println("Error: no capture interface given (-iface flag or engine.interface).")
		flag.Usage()
		os.Exit(1)
	}

	parser, err := protocol.NewParser(cfg.Engine.IntHops)
	if err != nil {
		log.Fatalf("Invalid hop count: %v", err)
	}

	var pub *probe.Publisher
	if !logOnly {
		pub, err = probe.NewPublisher(cfg.Probe)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer pub.Close()
	} else {
		protocol.Trace = true
	}

	handle, err := pcap.OpenLive(interfaceName, snapshotLen, promiscuous, timeout)
	if err != nil {
		log.Fatalf("Error opening device %s: %v", interfaceName, err)
	}
	defer handle.Close()

	log.Printf("Probe started on %s with %d INT hops.", interfaceName, parser.Hops())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
		published := 0
		for packet := range packetSource.Packets() {
			chain, err := parser.DecodePacket(packet)
			if err != nil {
				log.Printf("Error decoding INT chain - %v", err)
				continue
			}
			rec := protocol.Extract(packet, chain)
			if rec == nil {
				if parser.Hops() == 0 {
					log.Printf("Packet data - [%v]", packet)
				}
				continue
			}
			if logOnly {
				log.Printf("INT Packet data - [%+v]", rec)
				continue
			}
			if err := pub.Publish(rec); err != nil {
				log.Printf("Failed to publish record: %v", err)
				continue
			}
			published++
			if published%1000 == 0 {
				log.Printf("%d records published...", published)
			}
		}
	}()

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}

// runSubscriber subscribes to the probe subject and prints received records.
func runSubscriber(cfg *config.Config) {
	sub, err := probe.NewSubscriber(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	if err := sub.Start(func(rec model.FlowRecord) {
		log.Printf("Received record: %+v", rec)
	}); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
