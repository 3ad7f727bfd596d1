package billing

import "time"

func (uc *UpsertInvoiceUseCase) SetClock(now func() time.Time) { uc.now = now }
func (uc *PurgeUseCase) SetClock(now func() time.Time)         { uc.now = now }
