package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/urft/urft/internal/sender"
	"github.com/urft/urft/internal/session"
)

var configFile = flag.String("config", "", "path to a YAML config overlay (optional)")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: urft-send [-config path] <file_path> <server_ip> <server_port>")
		os.Exit(1)
	}
	filePath, serverIP, portArg := args[0], args[1], args[2]

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	port, err := strconv.Atoi(portArg)
	if err != nil {
		logger.Fatal("invalid server port", zap.String("port", portArg), zap.Error(err))
	}

	remote := &net.UDPAddr{IP: net.ParseIP(serverIP), Port: port}
	conn, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		logger.Fatal("failed to dial", zap.String("server", remote.String()), zap.Error(err))
	}
	defer conn.Close()

	logger.Info("starting transfer", zap.String("file", filePath), zap.String("server", remote.String()))

	snd := sender.New(conn, cfg, logger)
	result, err := snd.Send(filePath)
	if err != nil {
		logger.Error("transfer failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("transfer complete",
		zap.Uint32("packets", result.Total),
		zap.Uint64("retransmits", result.Retransmits),
		zap.Duration("rtt", result.RTT),
		zap.Duration("elapsed", result.ElapsedTotal))
}

// loadConfig reads a YAML config overlay on top of session.DefaultConfig.
// A missing file falls back to the default config rather than failing.
func loadConfig(filename string) (session.Config, error) {
	cfg := session.DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Config file not found, using default config\n")
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
