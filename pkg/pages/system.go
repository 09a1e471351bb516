package pages

import (
	"heatmon/pkg/assets"
	"heatmon/pkg/render"
)

func (p *Pages) factoryReset(*render.Exchange) *render.Stream {
	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.RefreshMeta),
		render.Text(assets.BodyStart, assets.WarnReset, assets.MenuJS, assets.Footer),
		render.Action(func() {
			p.log.Warn().Msg("Factory reset requested")
			if p.d.Actions != nil {
				p.d.Actions.FactoryReset()
			}
		}),
	)
}

func (p *Pages) reboot(*render.Exchange) *render.Stream {
	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.RefreshMeta),
		render.Text(assets.BodyStart, assets.WarnReboot, assets.MenuJS, assets.Footer),
		render.Action(func() {
			p.log.Warn().Msg("Reboot requested")
			if p.d.Actions != nil {
				p.d.Actions.Reboot()
			}
		}),
	)
}
