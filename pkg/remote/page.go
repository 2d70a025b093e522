package remote

// remotePage is the phone control surface. It connects back to the
// WebSocket port (%d) on the same host it was served from.
const remotePage = `<!DOCTYPE html>
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>SegiTelep Remote</title>
<style>
body { font-family: sans-serif; background: #111; color: #eee; margin: 0; padding: 1rem; text-align: center; }
button { font-size: 1.4rem; margin: 0.3rem; padding: 0.8rem 1.2rem; border: none; border-radius: 8px; background: #333; color: #eee; }
button:active { background: #555; }
#status { margin: 1rem 0; color: #9c9; min-height: 1.5em; }
input[type=range] { width: 80%%; }
</style>
</head>
<body>
<h2>SegiTelep Remote</h2>
<div id="status">connecting…</div>
<div>
  <button onclick="send('prev_segment')">⏮</button>
  <button onclick="send('play')">▶</button>
  <button onclick="send('pause')">⏸</button>
  <button onclick="send('stop')">⏹</button>
  <button onclick="send('next_segment')">⏭</button>
</div>
<div>
  <label>Speed <span id="speed">1.0</span>×</label><br>
  <input type="range" min="0.5" max="2.0" step="0.1" value="1.0"
         oninput="sendSpeed(this.value)">
</div>
<div>
  <button onclick="send('toggle_mirror')">Mirror</button>
  <button onclick="send('reset_position')">Reset</button>
  <button onclick="send('go_live')">Go Live</button>
  <button onclick="send('exit_live')">Exit Live</button>
</div>
<script>
var ws = new WebSocket('ws://' + location.hostname + ':%d/');
ws.onmessage = function(ev) {
  var st = JSON.parse(ev.data);
  document.getElementById('status').textContent =
    (st.isPlaying ? 'playing' : 'paused') +
    ' — segment ' + (st.currentSegment + 1) + '/' + st.totalSegments +
    (st.isLive ? ' — LIVE' : '');
  document.getElementById('speed').textContent = st.currentSpeed.toFixed(1);
};
ws.onclose = function() {
  document.getElementById('status').textContent = 'disconnected';
};
function send(action) { ws.send(JSON.stringify({action: action})); }
function sendSpeed(v) { ws.send(JSON.stringify({action: 'set_speed', value: parseFloat(v)})); }
</script>
</body>
</html>`
