package remote

import (
	"fmt"
	"net"

	qrcode "github.com/skip2/go-qrcode"
)

// ConnectionURL builds the URL a phone should open, using the machine's
// first private interface address. Loopback is useless to a phone, so it
// is skipped.
func ConnectionURL(port int) (string, error) {
	ip, err := privateIP()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d/", ip, port), nil
}

// QRPNG renders the connection URL as a PNG for on-screen display.
func QRPNG(port, size int) ([]byte, error) {
	url, err := ConnectionURL(port)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(url, qrcode.Medium, size)
}

func privateIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 != nil && ip4.IsPrivate() {
			return ip4.String(), nil
		}
	}
	return "", fmt.Errorf("no private network interface found")
}
