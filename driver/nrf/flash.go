//go:build tinygo || baremetal

package nrf

import (
	"device/nrf"
	"encoding/binary"
	"runtime/volatile"
	"unsafe"

	"github.com/ystepanoff/lbmwm1110/nvm"
)

// Flash programs the internal flash through the NVMC. Addresses are
// absolute, so the context pages must stay clear of the application image.
type Flash struct{}

func (Flash) PageSize() int  { return nvm.DefaultPageSize }
func (Flash) PageCount() int { return nvm.DefaultPageCount }

func waitNVMC() {
	for nrf.NVMC.READY.Get() == 0 {
	}
}

func (f Flash) ErasePage(page int) error {
	if page < 0 || page >= f.PageCount() {
		return nvm.ErrPageRange
	}
	nrf.NVMC.CONFIG.Set(nrf.NVMC_CONFIG_WEN_Een)
	waitNVMC()
	nrf.NVMC.ERASEPAGE.Set(uint32(page * f.PageSize()))
	waitNVMC()
	nrf.NVMC.CONFIG.Set(nrf.NVMC_CONFIG_WEN_Ren)
	waitNVMC()
	return nil
}

func (f Flash) Program(addr int, p []byte) error {
	if addr%nvm.WriteBlockSize != 0 || len(p)%nvm.WriteBlockSize != 0 {
		return nvm.ErrUnaligned
	}
	if addr < 0 || addr+len(p) > f.PageSize()*f.PageCount() {
		return nvm.ErrAddressRange
	}

	nrf.NVMC.CONFIG.Set(nrf.NVMC_CONFIG_WEN_Wen)
	waitNVMC()
	for i := 0; i < len(p); i += 4 {
		word := (*uint32)(unsafe.Pointer(uintptr(addr + i)))
		volatile.StoreUint32(word, binary.LittleEndian.Uint32(p[i:]))
		waitNVMC()
	}
	nrf.NVMC.CONFIG.Set(nrf.NVMC_CONFIG_WEN_Ren)
	waitNVMC()
	return nil
}

func (f Flash) Read(addr int, p []byte) error {
	if addr < 0 || addr+len(p) > f.PageSize()*f.PageCount() {
		return nvm.ErrAddressRange
	}
	copy(p, unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(p)))
	return nil
}
