// Command ldapwired is a minimal demo server built on the ldapwire
// protocol engine: it binds a listener, opens one Endpoint per accepted
// connection, and answers every BindRequest with a success BindResponse;
// other operations get no reply. Verb structure (serve/version
// subcommands under one root) is built on cobra's Command tree.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/oba-ldap/ldapwire"
	"github.com/oba-ldap/ldapwire/internal/config"
	"github.com/oba-ldap/ldapwire/internal/obalog"
	"github.com/oba-ldap/ldapwire/internal/opcode"
	"github.com/oba-ldap/ldapwire/internal/registry"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "ldapwired",
		Short: "A demo LDAP protocol-engine server",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a ldapwired.yaml config file")
	root.AddCommand(serveCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Accept LDAP connections and answer every bind with a success result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ldapwired version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ldapwired (oba-ldap/ldapwire engine demo)")
		},
	}
}

func serve(cfg *config.Config) error {
	log := obalog.NewDefault()

	network := "tcp"
	if cfg.Server.Unix {
		network = "unix"
	}
	ln, err := net.Listen(network, cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("ldapwired: listen: %w", err)
	}
	defer ln.Close()
	log.Info("listening", "network", network, "address", cfg.Server.Address)

	engineCfg := &ldapwire.Config{
		Registry:            echoRegistry(),
		DefaultRejectBitmap: rejectBitmapFrom(cfg.Reject.Opcodes),
		Logger:              log,
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go handleConn(engineCfg, conn)
	}
}

func handleConn(cfg *ldapwire.Config, conn net.Conn) {
	ep := ldapwire.NewEndpoint(cfg)
	ep.Bind(conn)
	defer ep.Close()

	for {
		st := ep.GetEvent()
		switch st {
		case ldapwire.StatusOK, ldapwire.StatusUnsupported, ldapwire.StatusMalformed:
			for ep.PutEvent() == ldapwire.StatusOK {
			}
			continue
		default:
			return
		}
	}
}

// echoRegistry dispatches BindRequest to an immediate success BindResponse
// and every other request opcode to StatusUnsupported, just enough
// behavior to exercise the engine end-to-end.
func echoRegistry() *registry.Registry {
	return registry.ByName{
		BindRequest: func(ctx *ldapwire.Context) ldapwire.Status {
			ep := ldapwire.EndpointFromContext(ctx)
			return ep.Send(ctx.MessageID, opcode.BindResponse, []ldapwire.Cursor{
				ldapwire.NewCursor([]byte{0}),
				ldapwire.NewCursor([]byte{}),
				ldapwire.NewCursor([]byte{}),
				ldapwire.NullCursor(),
			}, ldapwire.NullCursor())
		},
	}.Build()
}

func rejectBitmapFrom(names []string) [2]uint32 {
	var bitmap [2]uint32
	for _, name := range names {
		for op := 0; op < opcode.NumOpcodes; op++ {
			if opcode.Table[op].Name == name {
				word, bit := opcode.WordAndBit(op)
				bitmap[word] |= 1 << bit
			}
		}
	}
	return bitmap
}
