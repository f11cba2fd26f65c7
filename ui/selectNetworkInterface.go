package ui

import (
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/charmbracelet/huh"
)

// tapAttachable reports whether the network tap can usefully attach to
// iface: it must be up, not loopback, and carry a hardware address — the
// fast path parses Ethernet frames, so frame-less devices (tun, wireguard)
// have nothing for it to inspect.
func tapAttachable(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	return len(iface.HardwareAddr) > 0
}

// SelectNetworkInterface prompts the user to pick the interface the network
// tap should attach to. The index shown is the one interface-change alerts
// report.
func SelectNetworkInterface() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Fatalf("Failed to get network interfaces: %v", err)
	}

	choices := []huh.Option[string]{}
	for _, iface := range ifaces {
		if !tapAttachable(iface) {
			continue
		}
		addrs, _ := iface.Addrs()
		addrStrs := []string{}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok {
				addrStrs = append(addrStrs, ipNet.IP.String())
			}
		}
		pretty := fmt.Sprintf("%s [index %d] (%s)",
			iface.Name, iface.Index, strings.Join(addrStrs, ", "))
		choices = append(choices, huh.NewOption(pretty, iface.Name))
	}

	if len(choices) == 0 {
		log.Fatal("No attachable network interfaces found.")
	}

	var selected string
	form := huh.NewSelect[string]().
		Title("Select the interface to monitor").
		Options(choices...).
		Value(&selected)

	if err := form.Run(); err != nil {
		log.Fatalf("Interface selection failed: %v", err)
	}

	return selected
}
