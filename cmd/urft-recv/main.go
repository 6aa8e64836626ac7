package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/urft/urft/internal/receiver"
	"github.com/urft/urft/internal/session"
)

var configFile = flag.String("config", "", "path to a YAML config overlay (optional)")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: urft-recv [-config path] <server_ip> <server_port>")
		os.Exit(1)
	}
	serverIP, portArg := args[0], args[1]

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

	local := &net.UDPAddr{IP: net.ParseIP(serverIP), Port: port}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		logger.Fatal("failed to bind", zap.String("addr", local.String()), zap.Error(err))
	}
	defer conn.Close()

	logger.Info("listening", zap.String("addr", local.String()))

	outDir, err := os.Getwd()
	if err != nil {
		logger.Fatal("failed to resolve output directory", zap.Error(err))
	}

	rcv := receiver.New(conn, cfg, outDir, logger)
	result, err := rcv.Receive()
	if err != nil {
		logger.Error("transfer failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("transfer complete",
		zap.String("output", result.OutputPath),
		zap.Int64("bytes", result.BytesWritten),
		zap.Uint32("packets", result.TotalPackets))
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
