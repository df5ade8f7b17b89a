package app

import (
	"log"
	"time"

	"VoxelStream/shared/util"
)

// Espera antes de tentar reconectar depois de uma queda.
const reconnectDelay = 5 * time.Second

// connectServer conecta ao servidor de regiões. Os callbacks só repassam
// para o streamer, que processa tudo na thread da janela.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em connectServer: %v", r)
		}
	}()

	a.netClient.OnRegion = func(coord util.RegionCoord, data []byte) {
		a.streamer.HandleRegion(coord, data)
	}
	a.netClient.OnChecksum = func(coord util.RegionCoord, match bool) {
		a.streamer.HandleChecksum(coord, match)
	}
	a.netClient.OnDisconnect = func(err error) {
		if a.quit.Load() {
			return
		}
		a.connStatus.Store("Reconectando...")
		log.Printf("[Network] Desconectado (%v). Nova tentativa em %s", err, reconnectDelay)
		time.AfterFunc(reconnectDelay, a.dial)
	}

	a.dial()
}

func (a *App) dial() {
	a.connStatus.Store("Conectando...")
	if err := a.netClient.Connect(); err != nil {
		log.Printf("[Network] Erro ao conectar: %v", err)
		a.connStatus.Store("Offline (só cache)")
		return
	}
	log.Println("[Network] Conectado ao servidor de regiões!")
	a.connStatus.Store("Conectado")
}
