// Command dvbctl is a BinaryControl command-line client, mirroring the
// teacher's cmd/sdo_client companion tool: one cobra subcommand per
// operation, each dialing the daemon, authenticating if credentials were
// given, sending one request, and printing the decoded reply.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvbstreamer/control/pkg/protocol"
)

var (
	addr    string
	user    string
	pass    string
	timeout time.Duration
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "dvbctl",
		Short: "Control client for dvbctld, the DVB streaming daemon",
	}
	root.PersistentFlags().StringVarP(&addr, "address", "a", "localhost:54197", "daemon address, host:port")
	root.PersistentFlags().StringVarP(&user, "user", "u", "", "username for opcodes that require authentication")
	root.PersistentFlags().StringVarP(&pass, "password", "p", "", "password for opcodes that require authentication")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "dial timeout")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each request/reply opcode")
	root.Version = "0.1.0"

	root.AddCommand(
		infoCmd(),
		uptimeCmd(),
		selectCmd(),
		currentCmd(),
		servicesCmd(),
		multiplexCmd(),
		pidsCmd(),
		statsCmd(),
		feStatusCmd(),
		addOutputCmd(),
		rmOutputCmd(),
		setOutputDestCmd(),
		lsOutputsCmd(),
		addPIDCmd(),
		rmPIDCmd(),
		lsPIDsCmd(),
		outputPacketsCmd(),
		addFilterCmd(),
		rmFilterCmd(),
		setFilterCmd(),
		setFilterDestCmd(),
		lsFiltersCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect dials addr and, if credentials were given, authenticates before
// returning. Most control opcodes are rejected without a prior AUTH; status
// opcodes accept an unauthenticated connection too, so callers needing only
// those may pass empty credentials.
func connect() (*client, error) {
	c, err := dial(addr, timeout)
	if err != nil {
		return nil, err
	}
	if user != "" {
		if err := c.authenticate(user, pass); err != nil {
			c.Close()
			return nil, fmt.Errorf("dvbctl: authenticating: %w", err)
		}
	}
	return c, nil
}

func logExchange(req, resp *protocol.Message) {
	if !verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "[dvbctl] %s -> %s\n", req.Opcode, resp.Opcode)
}

// send dials, optionally authenticates, sends req and returns the reply,
// closing the connection before returning.
func send(req *protocol.Message) (*protocol.Message, error) {
	c, err := connect()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	logExchange(req, resp)
	return resp, nil
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the streamer name reported by INFO",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpINFO)
			if err := req.PutByte(0x00); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			text, err := rerrText(resp)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

func uptimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uptime",
		Short: "Print the daemon's uptime",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpINFO)
			if err := req.PutByte(0xFF); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			text, err := rerrText(resp)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

func selectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <service>",
		Short: "Select the primary service (CSPS)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCSPS)
			if err := req.PutString(args[0]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current primary service (SSPS)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(protocol.NewMessage(protocol.OpSSPS))
			if err != nil {
				return err
			}
			text, err := rerrText(resp)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

func stringListCmd(use, short string, opcode protocol.Opcode, countWidth int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(protocol.NewMessage(opcode))
			if err != nil {
				return err
			}
			resp.Seek(0)
			var count uint16
			if countWidth == 1 {
				var b uint8
				if err := resp.Decode("b", &b); err != nil {
					return err
				}
				count = uint16(b)
			} else if err := resp.Decode("d", &count); err != nil {
				return err
			}
			for i := uint16(0); i < count; i++ {
				var s string
				if err := resp.Decode("s", &s); err != nil {
					return err
				}
				fmt.Println(s)
			}
			return nil
		},
	}
}

func servicesCmd() *cobra.Command {
	return stringListCmd("services", "List every known service (SSLA)", protocol.OpSSLA, 2)
}

func multiplexCmd() *cobra.Command {
	return stringListCmd("multiplex", "List services on the current multiplex (SSLM)", protocol.OpSSLM, 2)
}

func pidsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pids <service>",
		Short: "List a service's elementary stream PIDs (SSPL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpSSPL)
			if err := req.PutString(args[0]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return printPIDList(resp)
		},
	}
}

func printPIDList(resp *protocol.Message) error {
	resp.Seek(0)
	var count uint16
	if err := resp.Decode("d", &count); err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		var pid uint16
		if err := resp.Decode("d", &pid); err != nil {
			return err
		}
		fmt.Println(pid)
	}
	return nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print transport-stream signal statistics (STSS)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(protocol.NewMessage(protocol.OpSTSS))
			if err != nil {
				return err
			}
			resp.Seek(0)
			var ber, snr, strength, uncorrected, corrected uint32
			if err := resp.Decode("lllll", &ber, &snr, &strength, &uncorrected, &corrected); err != nil {
				return err
			}
			fmt.Printf("ber=%d snr=%d strength=%d uncorrected=%d corrected=%d\n",
				ber, snr, strength, uncorrected, corrected)
			return nil
		},
	}
}

func feStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "festatus",
		Short: "Print front-end lock status (SFES)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(protocol.NewMessage(protocol.OpSFES))
			if err != nil {
				return err
			}
			resp.Seek(0)
			var locked uint8
			var frequency uint32
			var symbolRate, bandwidth uint16
			if err := resp.Decode("bldd", &locked, &frequency, &symbolRate, &bandwidth); err != nil {
				return err
			}
			fmt.Printf("locked=%t frequency=%d symbolRate=%d bandwidth=%d\n",
				locked != 0, frequency, symbolRate, bandwidth)
			return nil
		},
	}
}

func addOutputCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addoutput <name> <mrl>",
		Short: "Add a manually PID-managed output destination (COAO)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCOAO)
			if err := req.Encode("ss", args[0], args[1]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func rmOutputCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmoutput <name>",
		Short: "Remove an output (CORO)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCORO)
			if err := req.PutString(args[0]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func setOutputDestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setoutputdest <name> <mrl>",
		Short: "Change where an output delivers to (COSD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCOSD)
			if err := req.Encode("ss", args[0], args[1]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func lsOutputsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsoutputs",
		Short: "List every output (SOLO)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(protocol.NewMessage(protocol.OpSOLO))
			if err != nil {
				return err
			}
			resp.Seek(0)
			var count uint8
			if err := resp.Decode("b", &count); err != nil {
				return err
			}
			for i := uint8(0); i < count; i++ {
				var name, mrl string
				if err := resp.Decode("ss", &name, &mrl); err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", name, mrl)
			}
			return nil
		},
	}
}

func parsePIDs(args []string) ([]uint16, error) {
	pids := make([]uint16, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("dvbctl: %q is not a valid PID: %w", a, err)
		}
		pids = append(pids, uint16(v))
	}
	return pids, nil
}

func pidEditCmd(use, short string, opcode protocol.Opcode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pids, err := parsePIDs(args[1:])
			if err != nil {
				return err
			}
			req := protocol.NewMessage(opcode)
			if err := req.Encode("sd", args[0], uint16(len(pids))); err != nil {
				return err
			}
			for _, pid := range pids {
				if err := req.PutUint16(pid); err != nil {
					return err
				}
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func addPIDCmd() *cobra.Command {
	return pidEditCmd("addpid <output> <pid...>", "Add PIDs to a manual output (COAP)", protocol.OpCOAP)
}

func rmPIDCmd() *cobra.Command {
	return pidEditCmd("rmpid <output> <pid...>", "Remove PIDs from a manual output (CORP)", protocol.OpCORP)
}

func lsPIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lspids <output>",
		Short: "List the PIDs a manual output carries (SOLP)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpSOLP)
			if err := req.PutString(args[0]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return printPIDList(resp)
		},
	}
}

func outputPacketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outputpackets <output>",
		Short: "Print an output's delivered packet count (SOPC)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpSOPC)
			if err := req.PutString(args[0]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			resp.Seek(0)
			var count uint32
			if err := resp.Decode("l", &count); err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
}

func addFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addsf <name> <mrl>",
		Short: "Add a named service filter that follows a service automatically (CSSA)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCSSA)
			if err := req.Encode("ss", args[0], args[1]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func rmFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmsf <name>",
		Short: "Remove a named service filter (CSSR)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCSSR)
			if err := req.PutString(args[0]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func setFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setsf <name> <service>",
		Short: "Point a named service filter at a different service (CSSS)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCSSS)
			if err := req.Encode("ss", args[0], args[1]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func setFilterDestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setsfdest <name> <mrl>",
		Short: "Change where a named service filter delivers to (CSSD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewMessage(protocol.OpCSSD)
			if err := req.Encode("ss", args[0], args[1]); err != nil {
				return err
			}
			resp, err := send(req)
			if err != nil {
				return err
			}
			return rerrError(resp)
		},
	}
}

func lsFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lssfs",
		Short: "List every named service filter (SSFL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(protocol.NewMessage(protocol.OpSSFL))
			if err != nil {
				return err
			}
			resp.Seek(0)
			var count uint8
			if err := resp.Decode("b", &count); err != nil {
				return err
			}
			for i := uint8(0); i < count; i++ {
				var name, mrl, service string
				if err := resp.Decode("sss", &name, &mrl, &service); err != nil {
					return err
				}
				fmt.Printf("%s\t%s\t%s\n", name, mrl, service)
			}
			return nil
		},
	}
}
