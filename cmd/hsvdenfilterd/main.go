// Command hsvdenfilterd hosts one HSV filter node behind a WebSocket
// endpoint: clients upload binary PCM frames using the project's hybrid
// full/minimal wire header, the frames are denoised, and the result is
// both written back to the same connection and packetized as RTP for
// any listening consumer.
package main

import (
	"encoding/binary"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/rtp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speechden/hsv/internal/filternode"
	"github.com/speechden/hsv/internal/metrics"
	"github.com/speechden/hsv/internal/suppressor"
	"github.com/speechden/hsv/internal/wireproto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func main() {
	var (
		listenAddr  string
		metricsAddr string
		rtpAddr     string
		modeName    string
		compress    bool
		configPath  string
	)
	flag.StringVar(&listenAddr, "listen-addr", ":8090", "address to serve the /denoise WebSocket endpoint on")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flag.StringVar(&rtpAddr, "rtp-addr", "", "if set, send denoised audio as RTP to this UDP address")
	flag.StringVar(&modeName, "mode", "wiener", "suppressor mode: specsub, wiener, tsnr, tsnrg, rtsnr, rtsnrg")
	flag.BoolVar(&compress, "compress", false, "zstd-compress outbound WebSocket frames")
	flag.StringVar(&configPath, "config", "", "optional YAML config file overriding the flags above")
	flag.Parse()

	if configPath != "" {
		cfg, err := filternode.LoadDaemonConfig(configPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if cfg.ListenAddr != "" {
			listenAddr = cfg.ListenAddr
		}
		if cfg.MetricsAddr != "" {
			metricsAddr = cfg.MetricsAddr
		}
		if cfg.RTPAddr != "" {
			rtpAddr = cfg.RTPAddr
		}
		if cfg.Mode != "" {
			modeName = cfg.Mode
		}
		compress = compress || cfg.Compress
	}

	mode, err := filternode.ResolveMode(modeName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New()
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Printf("serving metrics on %s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	var rtpConn *net.UDPConn
	if rtpAddr != "" {
		addr, err := net.ResolveUDPAddr("udp", rtpAddr)
		if err != nil {
			log.Fatalf("resolve rtp-addr: %v", err)
		}
		rtpConn, err = net.DialUDP("udp", nil, addr)
		if err != nil {
			log.Fatalf("dial rtp-addr: %v", err)
		}
		defer rtpConn.Close()
	}

	srv := &server{mode: mode, metrics: m, rtpConn: rtpConn, compress: compress}

	http.HandleFunc("/denoise", srv.handleWebSocket)
	log.Printf("hsvdenfilterd listening on %s (mode=%s)", listenAddr, mode)
	log.Fatal(http.ListenAndServe(listenAddr, nil))
}

type server struct {
	mode     suppressor.Mode
	metrics  *metrics.Metrics
	rtpConn  *net.UDPConn
	compress bool
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	log.Printf("session %s connected", sessionID)

	audioChan := make(chan []int16, 8)
	resultChan := make(chan []int16, 8)

	node := filternode.New(filternode.Params{SampleRate: 16000, Channels: 1, Mode: s.mode}, s.metrics)
	if err := node.Start(audioChan, resultChan); err != nil {
		log.Printf("session %s: start filter node: %v", sessionID, err)
		close(audioChan)
		return
	}
	defer node.Stop()

	enc, err := wireproto.NewEncoder(s.compress)
	if err != nil {
		log.Printf("session %s: new encoder: %v", sessionID, err)
		close(audioChan)
		return
	}
	defer enc.Close()

	ssrc := uuidToSSRC(sessionID)
	var rtpSeq uint16
	var sampleCount uint32

	go func() {
		for samples := range resultChan {
			pcm := make([]byte, len(samples)*2)
			for i, smp := range samples {
				binary.LittleEndian.PutUint16(pcm[i*2:], uint16(smp))
			}

			packet := enc.Encode(pcm, sampleCount, 16000, 1)
			if err := conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
				log.Printf("session %s: write failed: %v", sessionID, err)
				return
			}

			if s.rtpConn != nil {
				s.sendRTP(ssrc, &rtpSeq, sampleCount, pcm)
			}
			sampleCount += uint32(len(samples))
		}
	}()

	defer close(audioChan)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("session %s disconnected: %v", sessionID, err)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		hdr, payload, err := wireproto.Decode(data)
		if err != nil {
			log.Printf("session %s: bad frame: %v", sessionID, err)
			continue
		}
		_ = hdr

		samples := make([]int16, len(payload)/2)
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
		}

		select {
		case audioChan <- samples:
		case <-time.After(time.Second):
			log.Printf("session %s: filter node backpressure, dropping frame", sessionID)
		}
	}
}

func (s *server) sendRTP(ssrc uint32, seq *uint16, timestamp uint32, pcm []byte) {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    11, // L16 mono, per RFC 3551
			SequenceNumber: *seq,
			Timestamp:      timestamp,
			SSRC:           ssrc,
		},
		Payload: pcm,
	}
	*seq++

	raw, err := pkt.Marshal()
	if err != nil {
		log.Printf("rtp marshal failed: %v", err)
		return
	}
	if _, err := s.rtpConn.Write(raw); err != nil {
		log.Printf("rtp send failed: %v", err)
	}
}

// uuidToSSRC folds a session UUID down to a 32-bit RTP SSRC.
func uuidToSSRC(id string) uint32 {
	u := uuid.MustParse(id)
	b := u[:]
	var ssrc uint32
	for i := 0; i < 16; i += 4 {
		ssrc ^= binary.BigEndian.Uint32(b[i : i+4])
	}
	return ssrc
}
