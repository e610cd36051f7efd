package webserver

import (
	"html/template"
	"log"
	"net/http"

	"f1lapcompare/pkg/caster"
	"f1lapcompare/pkg/compare"

	"github.com/gorilla/websocket"
)

type hoverRequest struct {
	Distance float64 `json:"distance"`
}

type hoverReply struct {
	OK      bool                `json:"ok"`
	Message string              `json:"message,omitempty"`
	Point   *compare.HoverPoint `json:"point,omitempty"`
}

var (
	hoverRequests caster.Caster[hoverRequest] = caster.JSONCaster[hoverRequest]{}
	hoverReplies  caster.Caster[hoverReply]   = caster.JSONCaster[hoverReply]{}
)

// hoverHandler answers every {"distance": d} message with the values of the
// last comparison at d.
func (m *Manager) hoverHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}
		defer c.Close()
		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Println("read:", err)
				}
				return
			}
			out, err := hoverReplies.Encode(m.hover(message))
			if err != nil {
				log.Println("marshal:", err)
				return
			}
			if err := c.WriteMessage(mt, out); err != nil {
				log.Println("write:", err)
				return
			}
		}
	}
}

func (m *Manager) hover(message []byte) hoverReply {
	req, err := hoverRequests.Decode(message)
	if err != nil {
		return hoverReply{Message: "invalid hover request: " + err.Error()}
	}
	res, _ := m.current()
	hp, found := compare.Hover(res, req.Distance)
	if !found {
		return hoverReply{Message: errNoComparison.Error()}
	}
	return hoverReply{OK: true, Point: &hp}
}

type viewerData struct {
	Title    string
	MaxDist  float64
	HasChart bool
}

func (m *Manager) viewerHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		res, _ := m.current()
		d := viewerData{Title: "No comparison yet"}
		if res != nil && len(res.Distance) > 0 {
			d.Title = res.Title
			d.MaxDist = res.Distance[len(res.Distance)-1]
			d.HasChart = true
		}
		if err := viewerTemplate.Execute(w, d); err != nil {
			log.Printf("Error rendering viewer: %s\n", err)
		}
	}
}

var viewerTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Title }}</title>
  <style>body { background: #1a1a1a; color: white; font-family: sans-serif; }</style>
</head>
<body>
  <h3>{{ .Title }}</h3>
{{ if .HasChart }}
  <img id="chart" src="/api/chart.svg" width="800">
  <img id="minimap" src="/api/minimap.svg" width="320">
  <div>
    <input id="distance" type="range" min="0" max="{{ .MaxDist }}" step="1" value="0" style="width: 800px">
    <span id="values"></span>
  </div>
  <script>
    const proto = location.protocol === "https:" ? "wss://" : "ws://";
    const ws = new WebSocket(proto + location.host + "/api/hover");
    const slider = document.getElementById("distance");
    const values = document.getElementById("values");
    const minimap = document.getElementById("minimap");
    ws.onmessage = (e) => {
      const reply = JSON.parse(e.data);
      if (!reply.ok) { values.textContent = reply.message; return; }
      const p = reply.point;
      values.textContent = p.distance.toFixed(1) + "m: " + p.values[0].toFixed(2) + " / " + p.values[1].toFixed(2);
      minimap.src = "/api/minimap.svg?distance=" + p.distance;
    };
    slider.oninput = () => ws.send(JSON.stringify({distance: Number(slider.value)}));
  </script>
{{ end }}
</body>
</html>
`))
