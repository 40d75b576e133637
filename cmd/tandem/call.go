package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tandemwire/tandem/pkg/mux"
	"github.com/tandemwire/tandem/pkg/transport/ws"
)

func callCmd() *cobra.Command {
	var (
		url     string
		payload string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "call <ping|echo|reverse|stats|fail>",
		Short: "Issue one typed call against a serve instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			conn, err := ws.Dial(ctx, url)
			if err != nil {
				return err
			}

			demo := newDemoCatalog()
			peer := mux.NewPeer(conn, demo.Catalog)
			peer.Start()
			defer peer.Close()

			return runCall(ctx, demo, peer, args[0], payload)
		},
	}

	cmd.Flags().StringVar(&url, "url", "ws://localhost:8433/ws", "Websocket endpoint")
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "Request payload (echo, reverse, fail)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Overall call timeout")

	return cmd
}

func runCall(ctx context.Context, demo *demoCatalog, peer *mux.Peer, message, payload string) error {
	switch message {
	case "ping":
		start := time.Now()
		if _, err := demo.Ping.Call(ctx, peer, struct{}{}); err != nil {
			return err
		}
		fmt.Printf("pong (%s)\n", time.Since(start).Round(time.Microsecond))

	case "echo":
		reply, err := demo.Echo.Call(ctx, peer, []byte(payload))
		if err != nil {
			return err
		}
		fmt.Println(string(reply))

	case "reverse":
		reply, err := demo.Reverse.Call(ctx, peer, payload)
		if err != nil {
			return err
		}
		fmt.Println(reply)

	case "stats":
		reply, err := demo.Stats.Call(ctx, peer, struct{}{})
		if err != nil {
			return err
		}
		fmt.Printf("uptime:   %.1fs\n", reply.UptimeSeconds)
		fmt.Printf("requests: %d\n", reply.Requests)
		for name, n := range reply.PerMessage {
			fmt.Printf("  %-8s %d\n", name, n)
		}

	case "fail":
		_, err := demo.Fail.Call(ctx, peer, payload)
		if err == nil {
			return fmt.Errorf("fail call unexpectedly succeeded")
		}
		fmt.Printf("failed as requested: %v\n", err)

	default:
		return fmt.Errorf("unknown message %q (want ping, echo, reverse, stats, or fail)", message)
	}

	return nil
}
