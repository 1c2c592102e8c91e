package api

import (
	"net/http"
)

const puzzleUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Tower of Hanoi</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: monospace;
            background: #1a1a2e;
            color: #eee;
            min-height: 100vh;
            display: flex;
            flex-direction: column;
        }
        header {
            background: #16213e;
            padding: 12px 20px;
            border-bottom: 1px solid #0f3460;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 16px; font-weight: normal; }
        #status { padding: 4px 10px; border-radius: 4px; font-size: 12px; }
        #status.connected { background: #1b4332; color: #95d5b2; }
        #status.disconnected { background: #7f1d1d; color: #fca5a5; }
        #status.connecting { background: #78350f; color: #fcd34d; }
        .controls {
            background: #16213e;
            padding: 10px 20px;
            border-bottom: 1px solid #0f3460;
            display: flex;
            gap: 10px;
            align-items: center;
        }
        .controls label { font-size: 12px; color: #9ca3af; }
        .controls select, .controls button {
            background: #1a1a2e;
            border: 1px solid #0f3460;
            border-radius: 4px;
            padding: 6px 12px;
            color: #eee;
            font-family: monospace;
            font-size: 12px;
        }
        .controls button { background: #2563eb; border: none; cursor: pointer; }
        .controls button.auto { background: #059669; }
        .controls button.stop { background: #dc2626; }
        .controls button:disabled { background: #374151; cursor: not-allowed; }
        main { flex: 1; position: relative; padding: 30px 20px; }
        #board {
            display: flex;
            justify-content: space-around;
            align-items: flex-end;
            height: 340px;
        }
        .rod {
            position: relative;
            width: 30%;
            height: 100%;
            display: flex;
            flex-direction: column-reverse;
            align-items: center;
            border-bottom: 6px solid #0f3460;
        }
        .rod::before {
            content: "";
            position: absolute;
            bottom: 0;
            width: 8px;
            height: 90%;
            background: #0f3460;
            border-radius: 4px 4px 0 0;
        }
        .rod.over { background: rgba(37, 99, 235, 0.12); }
        .disk {
            position: relative;
            height: 24px;
            margin-top: 2px;
            border-radius: 12px;
            background: #7c3aed;
            z-index: 1;
        }
        .disk.top.draggable { cursor: grab; outline: 1px solid #a78bfa; }
        #stats { text-align: center; margin-top: 24px; font-size: 13px; color: #9ca3af; line-height: 1.8; }
        #moves { color: #60a5fa; font-weight: bold; }
        .overlay {
            position: absolute;
            inset: 0;
            background: rgba(26, 26, 46, 0.85);
            display: flex;
            align-items: center;
            justify-content: center;
        }
        .overlay.hidden { display: none; }
        #start-btn {
            background: #059669;
            border: none;
            border-radius: 4px;
            padding: 14px 32px;
            color: #fff;
            font-family: monospace;
            font-size: 16px;
            cursor: pointer;
        }
        #message {
            position: fixed;
            top: 80px;
            left: 50%;
            transform: translateX(-50%);
            background: #16213e;
            border: 1px solid #0f3460;
            border-left: 3px solid #2563eb;
            border-radius: 4px;
            padding: 12px 20px;
            min-width: 280px;
            display: none;
            white-space: pre-line;
        }
        #message.show { display: block; }
        #message.invalid { border-left-color: #dc2626; }
        #message h2 { font-size: 14px; margin-bottom: 6px; }
        #message p { font-size: 12px; color: #9ca3af; }
        footer {
            background: #16213e;
            padding: 8px 20px;
            border-top: 1px solid #0f3460;
            font-size: 11px;
            color: #6b7280;
        }
    </style>
</head>
<body>
    <header>
        <h1>Tower of Hanoi</h1>
        <span id="status" class="disconnected">Disconnected</span>
    </header>
    <div class="controls">
        <label for="disk-count">Disks:</label>
        <select id="disk-count"></select>
        <button id="auto-btn" class="auto">Auto Solve</button>
        <button id="stop-btn" class="stop" disabled>Stop</button>
        <button id="reset-btn">Reset</button>
    </div>
    <main>
        <div id="board">
            <div class="rod" data-rod="0"></div>
            <div class="rod" data-rod="1"></div>
            <div class="rod" data-rod="2"></div>
        </div>
        <div id="stats">
            <div>Moves: <span id="moves">0</span></div>
            <div id="formula"></div>
            <div>Time Complexity: O(2&#8319;)</div>
        </div>
        <div id="start-overlay" class="overlay">
            <button id="start-btn">Start</button>
        </div>
    </main>
    <div id="message"><h2 id="message-title"></h2><p id="message-text"></p></div>
    <footer>
        Session <span id="session">-</span> | <span id="sequencer">idle</span>
    </footer>

    <script>
        const rodEls = document.querySelectorAll('.rod');
        const statusEl = document.getElementById('status');
        const diskSelect = document.getElementById('disk-count');
        const autoBtn = document.getElementById('auto-btn');
        const stopBtn = document.getElementById('stop-btn');
        const resetBtn = document.getElementById('reset-btn');
        const startOverlay = document.getElementById('start-overlay');
        const messageEl = document.getElementById('message');
        let state = null;
        let dragFrom = null;
        let ws = null;
        let reconnectTimer = null;
        let messageTimer = null;

        function api(method, path, body) {
            const opts = { method: method, headers: { 'Content-Type': 'application/json' } };
            if (body !== undefined) opts.body = JSON.stringify(body);
            return fetch(path, opts).then(function(res) {
                return res.json().then(function(data) { return { status: res.status, data: data }; });
            });
        }

        function refresh() {
            return api('GET', '/state').then(function(res) {
                if (res.status === 200) render(res.data);
            });
        }

        function fillSelect(max, current) {
            if (diskSelect.options.length === max) {
                diskSelect.value = String(current);
                return;
            }
            diskSelect.innerHTML = '';
            for (let i = 1; i <= max; i++) {
                const opt = document.createElement('option');
                opt.value = String(i);
                opt.textContent = String(i);
                diskSelect.appendChild(opt);
            }
            diskSelect.value = String(current);
        }

        function render(s) {
            state = s;
            fillSelect(s.max_disks, s.disk_count);
            const maxWidth = 90;
            const minWidth = 20;
            const step = s.disk_count > 1 ? (maxWidth - minWidth) / (s.disk_count - 1) : 0;

            rodEls.forEach(function(rodEl, r) {
                rodEl.innerHTML = '';
                const rod = s.rods[r] || [];
                rod.forEach(function(disk, i) {
                    const el = document.createElement('div');
                    el.className = 'disk';
                    el.style.width = (minWidth + (disk - 1) * step) + '%';
                    el.style.filter = 'hue-rotate(' + (disk * 35) + 'deg)';
                    if (i === rod.length - 1) {
                        el.classList.add('top');
                        if (s.playable) {
                            el.classList.add('draggable');
                            el.draggable = true;
                            el.addEventListener('dragstart', function() { dragFrom = r; });
                        }
                    }
                    rodEl.appendChild(el);
                });
            });

            const optimal = s.optimal_move_count;
            document.getElementById('moves').textContent = s.move_count;
            document.getElementById('formula').textContent =
                'Current Moves = ' + s.move_count + ' | Optimal = 2' + superscript(s.disk_count) + ' − 1 = ' + optimal;
            document.getElementById('session').textContent = s.session.slice(0, 8);
            document.getElementById('sequencer').textContent = s.sequencer;

            const running = s.sequencer === 'running';
            autoBtn.disabled = running;
            stopBtn.disabled = !running;
            diskSelect.disabled = running;
        }

        function superscript(n) {
            const digits = '⁰¹²³⁴⁵⁶⁷⁸⁹';
            return String(n).split('').map(function(d) { return digits[Number(d)]; }).join('');
        }

        rodEls.forEach(function(rodEl, r) {
            rodEl.addEventListener('dragover', function(e) {
                e.preventDefault();
                rodEl.classList.add('over');
            });
            rodEl.addEventListener('dragleave', function() { rodEl.classList.remove('over'); });
            rodEl.addEventListener('drop', function(e) {
                e.preventDefault();
                rodEl.classList.remove('over');
                if (dragFrom === null) return;
                const from = dragFrom;
                dragFrom = null;
                api('POST', '/move', { from: from, to: r }).then(refresh);
            });
        });

        function showNotice(n) {
            setTimeout(function() {
                document.getElementById('message-title').textContent = n.title;
                document.getElementById('message-text').textContent = n.text;
                messageEl.className = 'show' + (n.title === 'Invalid Move' ? ' invalid' : '');
                if (messageTimer) clearTimeout(messageTimer);
                messageTimer = setTimeout(function() { messageEl.className = ''; }, n.display_ms);
            }, n.delay_ms);
        }

        function setStatus(status) {
            statusEl.className = status;
            statusEl.textContent = status.charAt(0).toUpperCase() + status.slice(1);
        }

        function connect() {
            if (ws && ws.readyState === WebSocket.OPEN) return;
            setStatus('connecting');

            const protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + location.host + '/ws');

            ws.onopen = function() {
                setStatus('connected');
                refresh();
            };

            ws.onmessage = function(msg) {
                try {
                    const frame = JSON.parse(msg.data);
                    if (frame.notice) showNotice(frame.notice);
                    if (frame.event.session === '' || !state || frame.event.session === state.session ||
                        frame.event.event === 'puzzle.reset') {
                        refresh();
                    }
                } catch (err) {
                    console.error('Failed to parse frame:', err);
                }
            };

            ws.onclose = function() {
                setStatus('disconnected');
                if (reconnectTimer) return;
                reconnectTimer = setTimeout(function() {
                    reconnectTimer = null;
                    connect();
                }, 3000);
            };

            ws.onerror = function() { ws.close(); };
        }

        function reset() {
            api('POST', '/reset', { disk_count: Number(diskSelect.value) }).then(function(res) {
                if (res.status === 200) render(res.data);
                startOverlay.classList.remove('hidden');
            });
        }

        document.getElementById('start-btn').onclick = function() {
            startOverlay.classList.add('hidden');
        };
        diskSelect.onchange = reset;
        resetBtn.onclick = reset;
        autoBtn.onclick = function() {
            startOverlay.classList.add('hidden');
            api('POST', '/autosolve').then(function(res) {
                if (res.status === 202) render(res.data);
            });
        };
        stopBtn.onclick = function() {
            api('POST', '/autosolve/cancel').then(function(res) {
                if (res.status === 200) render(res.data);
            });
        };

        refresh();
        connect();
    </script>
</body>
</html>`

// uiHandler serves the puzzle page at / and 404s everything else the mux
// routes here.
func uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(puzzleUIHTML))
}
