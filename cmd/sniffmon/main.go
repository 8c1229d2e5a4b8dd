//go:build linux

// Command sniffmon reads the sniffer's transcript from its USB serial port
// and reports what it saw per target.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"golang.org/x/sys/unix"

	"github.com/jangala-dev/tinygo-psxsniff/sniff"
)

func main() {
	var (
		dev     = flag.String("dev", "/dev/ttyACM0", "sniffer serial device")
		baud    = flag.Uint("baud", 115200, "baud rate (ignored by USB CDC)")
		idle    = flag.Duration("idle", 30*time.Second, "stop after the line is silent this long (0 waits for Ctrl-C)")
		verbose = flag.Bool("v", false, "echo every transaction")
	)
	flag.Parse()

	port, err := openSerialPort(*dev, *baud)
	if err != nil {
		log.Fatalf("can't open serial port: %v", err)
	}
	defer port.Close()

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	var sum sniff.Summary
	sc := sniff.NewTranscriptScanner(newIdleReader(port, stop, *idle))
	for sc.Scan() {
		ex := sc.Exchange()
		sum.Add(ex)
		if *verbose {
			log.Printf("%-7s % X | % X", ex.Target, ex.TX, ex.RX)
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("transcript: %v", err)
	}

	for _, t := range []sniff.Target{sniff.TargetJoypad, sniff.TargetMemoryCard, sniff.TargetUnknown} {
		log.Printf("%-7s %5d transactions %7d bytes", t, sum.Blocks[t], sum.Bytes[t])
	}
	log.Printf("total   %5d transactions", sum.Total())
}

// openSerialPort opens the port in raw 8N1 mode. Reads time out every
// 100ms so the scan loop can notice a stop request.
func openSerialPort(name string, baud uint) (io.ReadWriteCloser, error) {
	oo := serial.OpenOptions{
		PortName:              name,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
	s, err := serial.Open(oo)
	if err != nil {
		return nil, err
	}
	if err := claimPort(s); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// claimPort takes exclusive use of the tty and drops input queued before we
// opened it (a half-printed transcript from an earlier run).
func claimPort(port io.ReadWriteCloser) error {
	sc, ok := port.(syscall.Conn)
	if !ok {
		return nil
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var ioctlErr error
	err = rc.Control(func(fd uintptr) {
		if ioctlErr = unix.IoctlSetInt(int(fd), unix.TIOCEXCL, 0); ioctlErr != nil {
			return
		}
		ioctlErr = unix.IoctlSetInt(int(fd), unix.TCFLSH, unix.TCIFLUSH)
	})
	if err != nil {
		return err
	}
	return ioctlErr
}
