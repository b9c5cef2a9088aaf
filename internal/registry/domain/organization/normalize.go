package organization

import "innbot/internal/registry/models"

// Normalize maps a registry reply onto an Outcome. A nil reply or one without
// suggestions is NotFound. Otherwise the first suggestion is used as-is: the
// registry ranks the best match first and no re-ranking happens here.
//
// Normalize never fails. Missing keys, nulls and values of the wrong JSON type
// at any depth resolve to the field defaults.
func Normalize(payload *models.LookupResult) Outcome {
	if payload.Empty() {
		return NotFound()
	}

	var party models.Party
	if suggestion, ok := payload.Suggestions[0].Get(); ok {
		party, _ = suggestion.Data.Get()
	}
	return Found(recordFromParty(party))
}

func recordFromParty(p models.Party) Record {
	name, _ := p.Name.Get()
	address, _ := p.Address.Get()

	return Record{
		ShortName:      name.ShortWithOpf.Or(DefaultName),
		TaxID:          p.INN.Or(DefaultField),
		RegistrationID: p.OGRN.Or(DefaultField),
		KPP:            p.KPP.Or(DefaultField),
		Address:        address.Value.Or(DefaultField),
		Capital:        capitalFrom(p.Capital),
		Management:     managementFrom(p.Management),
		Activities:     activitiesFrom(p.Okveds),
		MetroStations:  metroFrom(address.Data),
	}
}

func capitalFrom(o models.Optional[models.Capital]) *Capital {
	c, ok := o.Get()
	if !ok {
		return nil
	}
	return &Capital{
		Amount: c.Value.Or(DefaultField),
		Unit:   c.Type.Or(DefaultCapitalUnit),
	}
}

func managementFrom(o models.Optional[models.Management]) *Management {
	m, ok := o.Get()
	if !ok {
		return nil
	}
	return &Management{
		PersonName: m.Name.Or(DefaultField),
		Title:      m.Post.Or(DefaultTitle),
	}
}

func activitiesFrom(list models.List[models.Okved]) []Activity {
	okveds := list.Present()
	if len(okveds) == 0 {
		return nil
	}
	out := make([]Activity, 0, len(okveds))
	for _, o := range okveds {
		out = append(out, Activity{
			Name:   o.Name.Or(DefaultField),
			IsMain: bool(o.Main),
		})
	}
	return out
}

// metroFrom drops null entries before truncating, so a list that starts with
// nulls still yields up to MaxMetroStations stations.
func metroFrom(o models.Optional[models.AddressData]) []MetroStation {
	data, _ := o.Get()
	stations := data.Metro.Present()
	if len(stations) == 0 {
		return nil
	}
	if len(stations) > MaxMetroStations {
		stations = stations[:MaxMetroStations]
	}
	out := make([]MetroStation, 0, len(stations))
	for _, s := range stations {
		out = append(out, MetroStation{
			Name:       s.Name.Or(DefaultStation),
			Line:       s.Line.Or(DefaultStation),
			DistanceKM: s.Distance.Or(DefaultDistance),
		})
	}
	return out
}
