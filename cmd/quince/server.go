package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/corequic/quic"
	"github.com/corequic/quic/transport"
)

func serverCommand(args []string) error {
	cmd := flag.NewFlagSet("server", flag.ExitOnError)
	listenAddr := cmd.String("listen", "0.0.0.0:4433", "listen on the given IP:port")
	certFile := cmd.String("cert", "", "TLS certificate file")
	keyFile := cmd.String("key", "", "TLS private key file")
	logLevel := cmd.Int("v", 2, "log verbose: 0=off 1=error 2=info 3=debug 4=trace")
	cmd.Parse(args)

	if *certFile == "" || *keyFile == "" {
		fmt.Fprintln(cmd.Output(), "Usage: quince server -cert <file> -key <file> [options]")
		cmd.PrintDefaults()
		return nil
	}
	cert, err := tls.LoadX509KeyPair(*certFile, *keyFile)
	if err != nil {
		return err
	}
	config := newConfig()
	config.TLS.Certificates = []tls.Certificate{cert}

	handler := serverHandler{}
	server := quic.NewServer(config)
	server.SetHandler(&handler)
	server.SetLogger(*logLevel, os.Stdout)
	if err := server.ListenAndServe(*listenAddr); err != nil {
		return err
	}
	log.Printf("listening on %s", *listenAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return server.Close()
}

type serverHandler struct{}

func (serverHandler) Serve(c quic.Conn, events []transport.Event) {
	for _, e := range events {
		log.Printf("%s connection event: %v", c.RemoteAddr(), e.Type)
		switch e.Type {
		case transport.EventStream:
			st := c.Stream(e.StreamID)
			if st == nil {
				continue
			}
			buf := make([]byte, 4096)
			n, _ := st.Read(buf)
			if n > 0 {
				log.Printf("stream %d received:\n%s", e.StreamID, buf[:n])
				st.Write(buf[:n])
				st.Close()
			}
		case quic.EventConnClose:
			log.Printf("%s connection closed", c.RemoteAddr())
		}
	}
}
