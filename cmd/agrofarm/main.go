// Command agrofarm drives the marketplace auth flows from the terminal. It is
// a thin shell over the session facade: the mobile screens call exactly the
// same operations. Handy against the hosted backend or a local stub
// (cmd/agrofarm-stub).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	stdlog "log"
	"os"

	"agrofarm/internal/platform/config"
	"agrofarm/internal/platform/httpclient"
	"agrofarm/internal/platform/logger"
	"agrofarm/internal/platform/metrics"
	"agrofarm/internal/routes"
	"agrofarm/internal/session"
	"agrofarm/internal/token"
)

const usage = `usage: agrofarm [-role Farmer|Buyer|Supplier] <command> [args]

commands:
  register <name> <email> <password> <phone> <address>
  verify   <email> <otp>
  resend   <email>
  login    <email> <password>
  logout
  forgot   <email> <phone>
  reset    <email> <phone> <otp> <new-password>
  me
  status
`

func main() {
	roleFlag := flag.String("role", "Farmer", "account role (Farmer, Buyer or Supplier)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	log := logger.New()

	role, err := routes.ParseRole(*roleFlag)
	if err != nil {
		log.Fatalf("invalid -role: %v", err)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	tokens := token.NewFileStore(cfg.TokenFile, cfg.TokenPassphrase)
	gateway := httpclient.New(cfg.BaseURL, cfg.Timeout, tokens, log, metrics.New())
	client := session.NewClient(gateway, tokens, log)

	ctx := context.Background()
	args := flag.Args()[1:]

	switch cmd := flag.Arg(0); cmd {
	case "register":
		requireArgs(log, args, 5)
		out, err := client.Register(ctx, role, session.RegistrationProfile{
			Name: args[0], Email: args[1], Password: args[2], Phone: args[3], Address: args[4],
		})
		exit(log, out, err)
	case "verify":
		requireArgs(log, args, 2)
		out, err := client.VerifyEmail(ctx, role, args[0], args[1])
		exit(log, out, err)
	case "resend":
		requireArgs(log, args, 1)
		out, err := client.ResendOTP(ctx, role, args[0])
		exit(log, out, err)
	case "login":
		requireArgs(log, args, 2)
		out, err := client.Login(ctx, role, session.Credentials{Email: args[0], Password: args[1]})
		exit(log, out, err)
	case "logout":
		if err := client.Logout(ctx, role); err != nil {
			log.Printf("remote logout failed (local token cleared anyway): %v", err)
			os.Exit(1)
		}
		fmt.Println("logged out")
	case "forgot":
		requireArgs(log, args, 2)
		out, err := client.ForgotPassword(ctx, role, args[0], args[1])
		exit(log, out, err)
	case "reset":
		requireArgs(log, args, 4)
		out, err := client.ResetPassword(ctx, role, args[0], args[1], args[2], args[3])
		exit(log, out, err)
	case "me":
		out, err := client.GetMyProfile(ctx, role)
		exit(log, out, err)
	case "status":
		tok, err := tokens.Load(ctx)
		if err != nil {
			log.Fatalf("read token: %v", err)
		}
		if tok == "" {
			fmt.Println("not logged in")
			return
		}
		if exp := token.ExpiresAt(tok); !exp.IsZero() {
			fmt.Printf("logged in, session expires %s\n", exp.Format("2006-01-02 15:04:05 MST"))
			return
		}
		fmt.Println("logged in")
	default:
		log.Printf("unknown command %q", cmd)
		flag.Usage()
		os.Exit(2)
	}
}

func requireArgs(log *stdlog.Logger, args []string, n int) {
	if len(args) != n {
		log.Fatalf("expected %d arguments, got %d (see -h)", n, len(args))
	}
}

func exit(log *stdlog.Logger, out session.Payload, err error) {
	if err != nil {
		log.Fatalf("%v", err)
	}
	encoded, marshalErr := json.MarshalIndent(out, "", "  ")
	if marshalErr != nil {
		log.Fatalf("render response: %v", marshalErr)
	}
	fmt.Println(string(encoded))
}
