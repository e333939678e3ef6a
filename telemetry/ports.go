package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes an available serial port
type PortInfo struct {
	Name        string
	Description string
	HWID        string
}

// PortLister enumerates serial ports
type PortLister func() ([]PortInfo, error)

// ListPorts returns the serial ports on this machine with USB details where known.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		info := PortInfo{Name: d.Name, Description: "n/a", HWID: "n/a"}
		if d.IsUSB {
			info.Description = d.Product
			info.HWID = fmt.Sprintf("USB VID:PID=%s:%s SER=%s", d.VID, d.PID, d.SerialNumber)
		}
		ports = append(ports, info)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}

// SelectPort picks the port to open. With several ports it asks on in
// (an empty answer picks the first); with one port it uses it; with none
// it polls the lister until a port shows up or ctx is done.
func SelectPort(ctx context.Context, list PortLister, in io.Reader, out io.Writer, poll time.Duration) (string, error) {
	ports, err := list()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}

	fmt.Fprintln(out, "available ports:")
	for _, p := range ports {
		fmt.Fprintf(out, "%s: %s [%s]\n", p.Name, p.Description, p.HWID)
	}

	if len(ports) > 1 {
		fmt.Fprint(out, "select port> ")
		answer := ""
		if sc := bufio.NewScanner(in); sc.Scan() {
			answer = strings.TrimSpace(sc.Text())
		}
		if answer == "" {
			answer = ports[0].Name
		}
		return answer, nil
	}

	for len(ports) == 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(poll):
		}
		ports, err = list()
		if err != nil {
			return "", fmt.Errorf("list serial ports: %w", err)
		}
	}
	return ports[0].Name, nil
}
